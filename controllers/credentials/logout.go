package credentials

import (
  "net/http"
  "gopkg.in/go-playground/validator.v9"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/sessions"

  "github.com/charmixer/loginui/config"
  "github.com/charmixer/loginui/environment"
  "github.com/charmixer/loginui/validators"
)

type logoutForm struct {
  RedirectTo string `form:"redirect_to" validate:"omitempty,notblank"`
}

// SubmitLogout drops the browser session. The identity provider owns session
// revocation on its side, this only forgets the token loginui stored.
func SubmitLogout(env *environment.State) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := c.MustGet(environment.LogKey).(*logrus.Entry)
    log = log.WithFields(logrus.Fields{
      "func": "SubmitLogout",
    })

    var lf logoutForm
    err := c.Bind(&lf)
    if err != nil {
      log.Debug(err.Error())
      c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
      return
    }

    validate := validator.New()
    validate.RegisterValidation("notblank", validators.NotBlank)
    err = validate.Struct(lf)
    if err != nil {
      log.Debug(err.Error())
      lf.RedirectTo = ""
    }

    session := sessions.Default(c)
    session.Delete(environment.SessionTokenKey)
    session.Delete(environment.SessionUsernameKey)
    session.Delete(environment.SessionErrorsKey)
    err = session.Save()
    if err != nil {
      log.Debug(err.Error())
    }

    redirectTo := lf.RedirectTo
    if redirectTo == "" {
      redirectTo = config.GetString("loginui.public.endpoints.login")
    }
    log.WithFields(logrus.Fields{"redirect_to": redirectTo}).Debug("Redirecting")
    c.Redirect(http.StatusSeeOther, redirectTo)
    c.Abort()
  }
  return gin.HandlerFunc(fn)
}
