package identity

import (
  "bytes"
  "encoding/json"
  "errors"
  "io/ioutil"
  "net/http"
  "strings"
  "golang.org/x/net/context"
  "golang.org/x/oauth2/clientcredentials"
)

type AuthenticateRequest struct {
  Identifier      string            `json:"identifier"`
  Secret          string            `json:"secret"`
}

// Session is opaque to loginui. It is stored in the browser session and
// handed back to the application, never inspected.
type Session struct {
  Token           string            `json:"token"`
  ExpiresIn       int64             `json:"expires_in,omitempty"`
}

type AuthenticateResponse struct {
  Session         *Session          `json:"session,omitempty"`
}

const (
  CodeInvalidCredentials string = "INVALID_CREDENTIALS"
)

// Older identity provider deployments do not send an error code, only this
// phrase somewhere in the message. Matched as a fallback until they are upgraded.
const legacyInvalidCredentialsMessage = "Invalid login credentials"

// Error is a structured failure reported by the identity provider. Message is
// human readable and may be shown to the user, Code is stable and matched on.
type Error struct {
  Code            string            `json:"code,omitempty"`
  Message         string            `json:"message"`
}

func (e *Error) Error() string {
  return e.Message
}

func IsInvalidCredentials(err error) bool {
  e, ok := err.(*Error)
  if !ok {
    return false
  }
  if e.Code == CodeInvalidCredentials {
    return true
  }
  return strings.Contains(e.Message, legacyInvalidCredentialsMessage)
}

type IdentityClient struct {
  *http.Client
}

// NewIdentityClient authenticates loginui itself towards the identity provider
// using the client credentials flow, so all authenticate calls carry an access token.
func NewIdentityClient(config *clientcredentials.Config) *IdentityClient {
  ctx := context.Background()
  return &IdentityClient{config.Client(ctx)}
}

func NewIdentityClientWithHttpClient(client *http.Client) *IdentityClient {
  return &IdentityClient{client}
}

func getDefaultHeaders() map[string][]string {
  return map[string][]string{
    "Content-Type": []string{"application/json"},
    "Accept": []string{"application/json"},
  }
}

// Authenticate issues exactly one authenticate call against the identity
// provider. A *Error return means the provider rejected the credentials or
// reported another structured failure, anything else is a transport level error.
func Authenticate(authenticateUrl string, client *IdentityClient, authenticateRequest AuthenticateRequest) (*AuthenticateResponse, error) {
  body, err := json.Marshal(authenticateRequest)
  if err != nil {
    return nil, err
  }

  request, err := http.NewRequest("POST", authenticateUrl, bytes.NewBuffer(body))
  if err != nil {
    return nil, err
  }
  request.Header = getDefaultHeaders()

  rawResponse, err := client.Do(request)
  if err != nil {
    return nil, err
  }
  defer rawResponse.Body.Close()

  responseData, err := ioutil.ReadAll(rawResponse.Body)
  if err != nil {
    return nil, err
  }

  if rawResponse.StatusCode != http.StatusOK {
    var identityError Error
    if err := json.Unmarshal(responseData, &identityError); err != nil || identityError.Message == "" {
      return nil, errors.New("identity provider returned status " + rawResponse.Status)
    }
    return nil, &identityError
  }

  var authenticateResponse AuthenticateResponse
  if err := json.Unmarshal(responseData, &authenticateResponse); err != nil {
    return nil, err
  }

  if authenticateResponse.Session == nil || authenticateResponse.Session.Token == "" {
    return nil, errors.New("identity provider returned ok without a session")
  }

  return &authenticateResponse, nil
}
