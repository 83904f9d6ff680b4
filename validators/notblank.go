package validators

import (
  "strings"
  "gopkg.in/go-playground/validator.v9"
)

// NotBlank fails fields that are empty after trimming whitespace. Do not use it
// for credential fields, those are validated on exact emptiness so whitespace-only
// input still reaches the identity provider unchanged.
func NotBlank(fl validator.FieldLevel) bool {
  return strings.TrimSpace(fl.Field().String()) != ""
}
