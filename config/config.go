package config

import (
  "strings"
  "github.com/spf13/viper"
)

// Configuration is read once at startup. Keys can be overridden with
// environment variables prefixed LOGINUI, eg. LOGINUI_SERVE_PUBLIC_PORT.
func InitConfigurations() error {
  viper.SetConfigName("loginui")
  viper.AddConfigPath("/etc/loginui/")
  viper.AddConfigPath(".")

  viper.SetEnvPrefix("LOGINUI")
  viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
  viper.AutomaticEnv()

  setDefaults()

  err := viper.ReadInConfig()
  if err != nil {
    // Missing config file is fine as long as the environment covers the required keys.
    if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
      return err
    }
  }
  return nil
}

func setDefaults() {
  viper.SetDefault("serve.public.port", "8080")
  viper.SetDefault("serve.tls.cert.path", "")
  viper.SetDefault("serve.tls.key.path", "")

  viper.SetDefault("log.debug", 0)
  viper.SetDefault("log.format", "default")

  viper.SetDefault("idp.public.endpoints.authenticate", "/v1/identities/authenticate")

  viper.SetDefault("oauth2.scopes.required", []string{"openid"})

  viper.SetDefault("loginui.public.endpoints.login", "/login")
  viper.SetDefault("loginui.public.endpoints.logout", "/logout")

  // Where the browser is sent once the identity provider issued a session.
  viper.SetDefault("redirect.home", "/")
}

func GetString(key string) string {
  return viper.GetString(key)
}

func GetStringSlice(key string) []string {
  return viper.GetStringSlice(key)
}

func GetInt(key string) int {
  return viper.GetInt(key)
}

func GetBool(key string) bool {
  return viper.GetBool(key)
}
