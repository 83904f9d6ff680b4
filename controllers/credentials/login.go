package credentials

import (
  "net/http"
  "gopkg.in/go-playground/validator.v9"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gorilla/csrf"
  "github.com/gin-contrib/sessions"

  "github.com/charmixer/loginui/config"
  "github.com/charmixer/loginui/environment"
  "github.com/charmixer/loginui/form"
  "github.com/charmixer/loginui/gateway/identity"
)

type loginForm struct {
  Username string `form:"username" validate:"required"`
  Password string `form:"password" validate:"required"`
}

// identityAuthenticator adapts the gateway to the narrow interface the form
// controller consumes.
type identityAuthenticator struct {
  client *identity.IdentityClient
  authenticateUrl string
}

func (a *identityAuthenticator) Authenticate(identifier string, secret string) (*identity.Session, error) {
  response, err := identity.Authenticate(a.authenticateUrl, a.client, identity.AuthenticateRequest{
    Identifier: identifier,
    Secret: secret,
  })
  if err != nil {
    return nil, err
  }
  return response.Session, nil
}

// deferredRedirect records the navigation request so the handler can save the
// session cookie before any response headers go out. A See Other redirect after
// the POST keeps the login screen out of back navigation.
type deferredRedirect struct {
  target string
  replaceHistory bool
  invoked bool
}

func (r *deferredRedirect) Navigate(target string, replaceHistory bool) {
  r.target = target
  r.replaceHistory = replaceHistory
  r.invoked = true
}

func (r *deferredRedirect) statusCode() int {
  if r.replaceHistory {
    return http.StatusSeeOther
  }
  return http.StatusFound
}

func ShowLogin(env *environment.State) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := c.MustGet(environment.LogKey).(*logrus.Entry)
    log = log.WithFields(logrus.Fields{
      "func": "ShowLogin",
    })

    session := sessions.Default(c)

    // Retain the values that was submitted, except passwords!
    username := session.Get(environment.SessionUsernameKey)

    // At most one error message is shown, and only once.
    var errorMessage string
    flashes := session.Flashes(environment.SessionErrorsKey)
    if len(flashes) > 0 {
      if message, ok := flashes[0].(string); ok {
        errorMessage = message
      }
    }

    err := session.Save() // Remove flashes read, and save submit fields
    if err != nil {
      log.Debug(err.Error())
    }

    c.HTML(http.StatusOK, "login.html", gin.H{
      "links": []map[string]string{
        {"href": "/public/css/credentials.css"},
      },
      "title": "Authenticate",
      csrf.TemplateTag: csrf.TemplateField(c.Request),
      "username": username,
      "errorMessage": errorMessage,
      "loginUrl": config.GetString("loginui.public.endpoints.login"),
    })
  }
  return gin.HandlerFunc(fn)
}

func SubmitLogin(env *environment.State) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := c.MustGet(environment.LogKey).(*logrus.Entry)
    log = log.WithFields(logrus.Fields{
      "func": "SubmitLogin",
    })

    var lf loginForm
    err := c.Bind(&lf)
    if err != nil {
      log.Debug(err.Error())
      c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
      return
    }

    session := sessions.Default(c)

    // Save values if submit fails
    session.Set(environment.SessionUsernameKey, lf.Username)
    err = session.Save()
    if err != nil {
      log.Debug(err.Error())
    }

    // Required is an exact emptiness check. Whitespace-only input is passed on
    // to the identity provider unchanged.
    validate := validator.New()
    err = validate.Struct(lf)
    if err != nil {
      if err, ok := err.(*validator.InvalidValidationError); ok {
        log.Debug(err.Error())
        c.AbortWithStatus(http.StatusInternalServerError)
        return
      }
      failSubmit(c, log, form.MessageMissingFields)
      return
    }

    authenticator := &identityAuthenticator{
      client: identity.NewIdentityClient(env.IdentityConfig),
      authenticateUrl: config.GetString("idp.public.url") + config.GetString("idp.public.endpoints.authenticate"),
    }
    redirect := &deferredRedirect{}

    controller := form.NewController(authenticator, redirect, config.GetString("redirect.home"), log)
    controller.FieldChanged(form.FieldIdentifier, lf.Username)
    controller.FieldChanged(form.FieldSecret, lf.Password)

    outcome, err := controller.Submit()
    if err != nil {
      // Validation short circuited, nothing was sent to the identity provider.
      log.Debug(err.Error())
      failSubmit(c, log, controller.ErrorMessage())
      return
    }

    if outcome.Kind == form.OutcomeSuccess && redirect.invoked {

      // Cleanup session
      session.Delete(environment.SessionUsernameKey)
      session.Delete(environment.SessionErrorsKey)
      session.Set(environment.SessionTokenKey, outcome.Session.Token)

      err = session.Save()
      if err != nil {
        log.Debug(err.Error())
      }

      log.WithFields(logrus.Fields{
        "redirect_to": redirect.target,
        "replace_history": redirect.replaceHistory,
      }).Debug("Redirecting")
      c.Redirect(redirect.statusCode(), redirect.target)
      c.Abort()
      return
    }

    failSubmit(c, log, outcome.Message)
  }
  return gin.HandlerFunc(fn)
}

// failSubmit flashes the single user facing message and sends the browser back
// to the login form. Fields keep their entered values, except the password.
func failSubmit(c *gin.Context, log *logrus.Entry, message string) {
  session := sessions.Default(c)
  session.AddFlash(message, environment.SessionErrorsKey)
  err := session.Save()
  if err != nil {
    log.Debug(err.Error())
  }

  redirectTo := config.GetString("loginui.public.endpoints.login")
  log.WithFields(logrus.Fields{"redirect_to": redirectTo}).Debug("Redirecting")
  c.Redirect(http.StatusFound, redirectTo)
  c.Abort()
}
