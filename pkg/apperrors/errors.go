package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnknownSchema      = errors.New("unknown schema")
	ErrNoJSONBlock        = errors.New("no json block found in model response")
	ErrMalformedJSON      = errors.New("malformed json in model response")
	ErrMissingSQLField    = errors.New("model response is missing the sql field")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
)
