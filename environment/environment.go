package environment

import (
  "golang.org/x/oauth2/clientcredentials"
  oidc "github.com/coreos/go-oidc"
  "github.com/sirupsen/logrus"
)

const (
  SessionStoreKey string = "loginui"
  SessionTokenKey string = "session.token"
  SessionUsernameKey string = "authenticate.username"
  SessionErrorsKey string = "authenticate.errors"
  RequestIdKey string = "RequestId"
  LogKey string = "log"
)

type State struct {
  AppName string
  Logger *logrus.Logger
  Provider *oidc.Provider
  IdentityConfig *clientcredentials.Config
}

type Route struct {
  URL string
  LogId string
}
