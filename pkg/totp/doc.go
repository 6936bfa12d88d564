// Package totp implements the shared-secret codec and the time-based
// one-time-password engine used by the two-factor authentication subsystem.
//
// Secrets are 160-bit values encoded with the unpadded RFC 4648 Base32
// alphabet, suitable for manual entry into authenticator apps. Codes follow
// RFC 6238 with the common fixed parameters: HMAC-SHA1, six decimal digits
// and a 30-second period. Verification accepts one time step of drift on
// either side of the current one, so a code remains usable for at most 90
// seconds.
//
// # Usage
//
//	secret, err := totp.GenerateSecret()
//	if err != nil {
//	    return err
//	}
//
//	uri, err := totp.ProvisioningURI(totp.URIParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	})
//	if err != nil {
//	    return err
//	}
//	// Render uri as a QR code and show it to the user, then check the
//	// first code they enter:
//	ok, err := totp.Verify(secret, userInput)
//
// # Error Handling
//
// Verify and VerifyAt never panic on malformed input. A non-Base32 secret
// yields ErrInvalidSecret and a code that is not exactly six digits yields
// ErrInvalidCode, both alongside a false result, so callers may either
// inspect the cause or treat malformation as an ordinary failed
// verification. A well-formed code that simply does not match reports
// (false, nil).
package totp
