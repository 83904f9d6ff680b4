// Package form holds the authentication form controller. It owns field state,
// validation, the single-flight submission lifecycle and outcome classification,
// and is deliberately free of any HTTP framework so the invariants can be tested
// on their own.
package form

import (
  "errors"
  "sync"
  "github.com/sirupsen/logrus"

  "github.com/charmixer/loginui/gateway/identity"
)

// User facing messages. The backend message is only surfaced verbatim for
// service errors, never for invalid credentials or transport failures.
const (
  MessageMissingFields = "Please enter both email and password"
  MessageInvalidCredentials = "Invalid email or password"
  MessageTryAgain = "Something went wrong. Please try again."
)

var (
  // ErrMissingFields is returned by Submit when validation short circuits.
  // The controller has already set its error message, nothing was sent.
  ErrMissingFields = errors.New("missing email or password")

  // ErrSubmitInFlight is returned when a submit arrives while another one is
  // outstanding. The duplicate is rejected without touching any state.
  ErrSubmitInFlight = errors.New("submission already in flight")
)

type Field int

const (
  FieldIdentifier Field = iota
  FieldSecret
)

type OutcomeKind int

const (
  OutcomeSuccess OutcomeKind = iota
  OutcomeInvalidCredentials
  OutcomeServiceError
  OutcomeUnexpectedFailure
)

// Outcome is produced exactly once per completed submission attempt.
type Outcome struct {
  Kind OutcomeKind
  Session *identity.Session // set iff Kind == OutcomeSuccess
  Message string            // user facing text, empty iff Kind == OutcomeSuccess
}

// Authenticator is the identity provider seen from the form. Implemented by
// the gateway, faked in tests.
type Authenticator interface {
  Authenticate(identifier string, secret string) (*identity.Session, error)
}

// Navigator performs the post-login redirect. With replaceHistory the login
// screen must not be reachable through back navigation afterwards.
type Navigator interface {
  Navigate(target string, replaceHistory bool)
}

type Controller struct {
  mutex sync.Mutex

  identifier string
  secret string
  errorMessage string
  submitting bool

  authenticator Authenticator
  navigator Navigator
  homeTarget string
  log *logrus.Entry
}

func NewController(authenticator Authenticator, navigator Navigator, homeTarget string, log *logrus.Entry) *Controller {
  return &Controller{
    authenticator: authenticator,
    navigator: navigator,
    homeTarget: homeTarget,
    log: log,
  }
}

func (c *Controller) FieldChanged(field Field, value string) {
  c.mutex.Lock()
  defer c.mutex.Unlock()

  switch field {
  case FieldIdentifier:
    c.identifier = value
  case FieldSecret:
    c.secret = value
  }
}

// Validate reports whether both fields are non-empty. Values are checked
// exactly as entered, whitespace is not trimmed.
func (c *Controller) Validate() bool {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  return c.validate()
}

func (c *Controller) validate() bool {
  return c.identifier != "" && c.secret != ""
}

// CanSubmit derives whether the submit control is enabled. Recomputed on every
// field change and disabled for the whole lifetime of an outstanding request.
func (c *Controller) CanSubmit() bool {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  return c.validate() && !c.submitting
}

func (c *Controller) Identifier() string {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  return c.identifier
}

func (c *Controller) ErrorMessage() string {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  return c.errorMessage
}

func (c *Controller) Submitting() bool {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  return c.submitting
}

// Submit runs one authentication attempt. The previous error message is
// cleared before anything else happens, including before validation. At most
// one attempt is in flight at a time, duplicates get ErrSubmitInFlight.
//
// Every completed attempt yields exactly one Outcome. Failures are fully
// recovered here: the error message is set, submitting is reset, and the
// caller can present the form again. On success the navigator is invoked
// exactly once with a history replacing redirect and field state is left alone,
// the screen is expected to go away.
func (c *Controller) Submit() (*Outcome, error) {
  c.mutex.Lock()
  if c.submitting {
    c.mutex.Unlock()
    return nil, ErrSubmitInFlight
  }

  c.errorMessage = ""

  if !c.validate() {
    c.errorMessage = MessageMissingFields
    c.mutex.Unlock()
    return nil, ErrMissingFields
  }

  c.submitting = true
  identifier := c.identifier
  secret := c.secret
  c.mutex.Unlock()

  outcome := c.classify(c.authenticator.Authenticate(identifier, secret))

  c.mutex.Lock()
  c.submitting = false
  if outcome.Kind != OutcomeSuccess {
    c.errorMessage = outcome.Message
  }
  c.mutex.Unlock()

  if outcome.Kind == OutcomeSuccess {
    c.navigator.Navigate(c.homeTarget, true)
  }
  return outcome, nil
}

// Classification order matters: invalid credentials first, then any other
// structured provider failure, then everything else as unexpected.
func (c *Controller) classify(session *identity.Session, err error) *Outcome {
  if err == nil {
    return &Outcome{Kind: OutcomeSuccess, Session: session}
  }

  if identity.IsInvalidCredentials(err) {
    // The provider message is intentionally not shown here.
    return &Outcome{Kind: OutcomeInvalidCredentials, Message: MessageInvalidCredentials}
  }

  if identityError, ok := err.(*identity.Error); ok {
    return &Outcome{Kind: OutcomeServiceError, Message: identityError.Message}
  }

  // Transport or parse level failure. Logged for diagnostics, never shown.
  if c.log != nil {
    c.log.WithFields(logrus.Fields{
      "func": "Submit",
    }).Debug(err.Error())
  }
  return &Outcome{Kind: OutcomeUnexpectedFailure, Message: MessageTryAgain}
}
