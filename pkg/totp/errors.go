package totp

import "errors"

var (
	ErrFailedToGenerateSecret = errors.New("failed to generate TOTP secret")
	ErrInvalidSecret          = errors.New("invalid TOTP secret")
	ErrInvalidCode            = errors.New("invalid TOTP code format")
	ErrMissingSecret          = errors.New("missing secret")
	ErrMissingAccountName     = errors.New("missing account name")
)
