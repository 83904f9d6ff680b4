package identity_test

import (
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/charmixer/loginui/gateway/identity"
)

func newStubProvider(t *testing.T, statusCode int, body string) (*httptest.Server, *identity.IdentityClient) {
  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    assert.Equal(t, "POST", r.Method)
    assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(statusCode)
    w.Write([]byte(body))
  }))
  t.Cleanup(server.Close)
  return server, identity.NewIdentityClientWithHttpClient(server.Client())
}

func TestAuthenticateSuccess(t *testing.T) {
  server, client := newStubProvider(t, http.StatusOK, `{"session":{"token":"sess-123","expires_in":3600}}`)

  response, err := identity.Authenticate(server.URL, client, identity.AuthenticateRequest{
    Identifier: "user@example.com",
    Secret: "correct",
  })
  require.NoError(t, err)
  require.NotNil(t, response.Session)
  assert.Equal(t, "sess-123", response.Session.Token)
  assert.Equal(t, int64(3600), response.Session.ExpiresIn)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
  tests := []struct {
    name string
    body string
  }{
    {name: "typed code", body: `{"code":"INVALID_CREDENTIALS","message":"Invalid login credentials"}`},
    {name: "legacy message only", body: `{"message":"400: Invalid login credentials"}`},
  }

  for _, tt := range tests {
    t.Run(tt.name, func(t *testing.T) {
      server, client := newStubProvider(t, http.StatusUnauthorized, tt.body)

      response, err := identity.Authenticate(server.URL, client, identity.AuthenticateRequest{
        Identifier: "user@example.com",
        Secret: "wrong",
      })
      require.Error(t, err)
      assert.Nil(t, response)
      assert.True(t, identity.IsInvalidCredentials(err))
    })
  }
}

func TestAuthenticateServiceError(t *testing.T) {
  server, client := newStubProvider(t, http.StatusTooManyRequests, `{"code":"RATE_LIMITED","message":"Too many attempts, try again later"}`)

  _, err := identity.Authenticate(server.URL, client, identity.AuthenticateRequest{
    Identifier: "user@example.com",
    Secret: "secret",
  })
  require.Error(t, err)
  assert.False(t, identity.IsInvalidCredentials(err))

  identityError, ok := err.(*identity.Error)
  require.True(t, ok)
  assert.Equal(t, "RATE_LIMITED", identityError.Code)
  assert.Equal(t, "Too many attempts, try again later", identityError.Message)
}

func TestAuthenticateMalformedFailure(t *testing.T) {
  server, client := newStubProvider(t, http.StatusBadGateway, `<html>upstream exploded</html>`)

  _, err := identity.Authenticate(server.URL, client, identity.AuthenticateRequest{
    Identifier: "user@example.com",
    Secret: "secret",
  })
  require.Error(t, err)

  _, ok := err.(*identity.Error)
  assert.False(t, ok, "unparseable failures are not structured provider errors")
  assert.False(t, identity.IsInvalidCredentials(err))
}

func TestAuthenticateOkWithoutSession(t *testing.T) {
  server, client := newStubProvider(t, http.StatusOK, `{}`)

  _, err := identity.Authenticate(server.URL, client, identity.AuthenticateRequest{
    Identifier: "user@example.com",
    Secret: "secret",
  })
  require.Error(t, err)
  assert.False(t, identity.IsInvalidCredentials(err))
}

func TestAuthenticateTransportFailure(t *testing.T) {
  server, client := newStubProvider(t, http.StatusOK, `{}`)
  url := server.URL
  server.Close()

  _, err := identity.Authenticate(url, client, identity.AuthenticateRequest{
    Identifier: "user@example.com",
    Secret: "secret",
  })
  require.Error(t, err)
  assert.False(t, identity.IsInvalidCredentials(err))
}

func TestIsInvalidCredentials(t *testing.T) {
  tests := []struct {
    name string
    err error
    expected bool
  }{
    {name: "nil", err: nil, expected: false},
    {name: "typed code", err: &identity.Error{Code: identity.CodeInvalidCredentials, Message: "whatever"}, expected: true},
    {name: "legacy substring", err: &identity.Error{Message: "Invalid login credentials"}, expected: true},
    {name: "substring embedded", err: &identity.Error{Message: "auth failed: Invalid login credentials (try again)"}, expected: true},
    {name: "other structured error", err: &identity.Error{Code: "EMAIL_NOT_CONFIRMED", Message: "Email not confirmed"}, expected: false},
    {name: "plain error", err: assert.AnError, expected: false},
  }

  for _, tt := range tests {
    t.Run(tt.name, func(t *testing.T) {
      assert.Equal(t, tt.expected, identity.IsInvalidCredentials(tt.err))
    })
  }
}
