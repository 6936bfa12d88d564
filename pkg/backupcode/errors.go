package backupcode

import "errors"

var (
	ErrInvalidCodeCount     = errors.New("invalid backup code count, must be greater than 0")
	ErrFailedToGenerateCode = errors.New("failed to generate backup code")
)
