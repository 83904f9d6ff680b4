package main

import (
  "net/url"
  "os"
  "golang.org/x/net/context"
  "golang.org/x/oauth2/clientcredentials"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/sessions"
  "github.com/gin-contrib/sessions/cookie"
  "github.com/gorilla/csrf"
  "github.com/gwatts/gin-adapter"
  oidc "github.com/coreos/go-oidc"
  "github.com/pborman/getopt"

  "github.com/charmixer/loginui/app"
  "github.com/charmixer/loginui/config"
  "github.com/charmixer/loginui/controllers/credentials"
  "github.com/charmixer/loginui/environment"
)

const appName = "loginui"

var (
  logDebug int // Set to 1 to enable debug
  logFormat string // Currently only supports default and json

  log *logrus.Logger

  appFields logrus.Fields
)

func init() {
  log = logrus.New()

  err := config.InitConfigurations()
  if err != nil {
    log.Panic(err.Error())
    return
  }

  logDebug = config.GetInt("log.debug")
  logFormat = config.GetString("log.format")

  // We only have 2 log levels. Things developers care about (debug) and things the user of the app cares about (info)
  log = logrus.New()
  if logDebug == 1 {
    log.SetLevel(logrus.DebugLevel)
  } else {
    log.SetLevel(logrus.InfoLevel)
  }
  if logFormat == "json" {
    log.SetFormatter(&logrus.JSONFormatter{})
  }

  appFields = logrus.Fields{
    "appname": appName,
    "log.debug": logDebug,
    "log.format": logFormat,
  }
}

func main() {

  provider, err := oidc.NewProvider(context.Background(), config.GetString("idp.public.url") + "/")
  if err != nil {
    logrus.WithFields(appFields).Panic("oidc.NewProvider" + err.Error())
    return
  }

  // loginui authenticates itself towards the identity provider endpoints using client credentials flow.
  identityConfig := &clientcredentials.Config{
    ClientID: config.GetString("oauth2.client.id"),
    ClientSecret: config.GetString("oauth2.client.secret"),
    TokenURL: provider.Endpoint().TokenURL,
    Scopes: config.GetStringSlice("oauth2.scopes.required"),
    EndpointParams: url.Values{"audience": {"idp"}},
    AuthStyle: 2, // https://godoc.org/golang.org/x/oauth2#AuthStyle
  }

  env := &environment.State{
    AppName: appName,
    Logger: log,
    Provider: provider,
    IdentityConfig: identityConfig,
  }

  optHelp := getopt.BoolLong("help", 0, "Help")
  getopt.Parse()

  if *optHelp {
    getopt.Usage()
    os.Exit(0)
  }

  serve(env)
}

func serve(env *environment.State) {
  r := gin.New() // Clean gin to take control with logging.
  r.Use(gin.Recovery())

  r.Use(app.RequestId())
  r.Use(app.RequestLogger(env, appFields))

  store := cookie.NewStore([]byte(config.GetString("session.authKey")))
  store.Options(sessions.Options{
    MaxAge: 86400,
    Path: "/",
    Secure: true,
    HttpOnly: true,
  })
  r.Use(sessions.Sessions(environment.SessionStoreKey, store))

  // Use CSRF on all loginui forms.
  adapterCSRF := adapter.Wrap(csrf.Protect([]byte(config.GetString("csrf.authKey")), csrf.Secure(true)))

  r.Static("/public", "public")
  r.LoadHTMLGlob("views/*")

  // Setup routes to use, this defines log for debug log
  routes := map[string]environment.Route{
    "/":       environment.Route{URL: "/",       LogId: "loginui://"},
    "/login":  environment.Route{URL: "/login",  LogId: "loginui://login"},
    "/logout": environment.Route{URL: "/logout", LogId: "loginui://logout"},
  }

  ep := r.Group("/")
  ep.Use(adapterCSRF)
  {
    ep.GET(routes["/"].URL, credentials.ShowLogin(env))
    ep.GET(routes["/login"].URL, credentials.ShowLogin(env))
    ep.POST(routes["/login"].URL, credentials.SubmitLogin(env))

    ep.POST(routes["/logout"].URL, credentials.SubmitLogout(env))
  }

  certPath := config.GetString("serve.tls.cert.path")
  keyPath := config.GetString("serve.tls.key.path")
  if certPath != "" && keyPath != "" {
    r.RunTLS(":" + config.GetString("serve.public.port"), certPath, keyPath)
  } else {
    r.Run(":" + config.GetString("serve.public.port"))
  }
}
