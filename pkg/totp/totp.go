package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the number of decimal digits in a generated code (RFC 6238 default).
	Digits = 6
	// Period is the length of one time step in seconds (RFC 6238 default).
	Period = 30
	// Skew is the number of time steps accepted on each side of the current one,
	// tolerating clock drift between the authenticator device and the server.
	Skew = 1
	// SecretSize is the raw secret length in bytes (160 bits, RFC 4226 recommendation).
	SecretSize = 20
	// Algorithm is the HMAC digest advertised in provisioning URIs.
	Algorithm = "SHA1"
	// DefaultIssuer is used when URIParams.Issuer is left empty.
	DefaultIssuer = "Immigration AI"
)

var (
	// SecretKeyRegex matches Base32-encoded secrets: uppercase A-Z, digits 2-7, optional padding.
	SecretKeyRegex = regexp.MustCompile(`^[A-Z2-7]+=*$`)

	codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// GenerateSecret returns a new Base32-encoded shared secret drawn from
// crypto/rand. Outputs are statistically independent across calls.
func GenerateSecret() (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return b32.EncodeToString(secret), nil
}

// URIParams contains the parameters for provisioning URI construction.
type URIParams struct {
	Secret      string // Base32-encoded shared secret (required)
	AccountName string // User-facing account label, typically an email (required)
	Issuer      string // Service name shown in authenticator apps (defaults to DefaultIssuer)
}

// Validate ensures required provisioning parameters are present and well-formed.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !SecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	return nil
}

// ProvisioningURI builds the otpauth:// key URI understood by authenticator
// apps, following the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
//
// The output is deterministic for a given set of parameters. No I/O is
// performed.
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	issuer := params.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", Algorithm)
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Generate returns the zero-padded code for the time step containing now.
func Generate(secret string) (string, error) {
	return GenerateAt(secret, time.Now())
}

// GenerateAt returns the zero-padded code for the time step containing t.
// Useful for tests and for generating codes at specific moments.
func GenerateAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := t.Unix() / int64(Period)
	code := GenerateHOTP(key, counter, Digits)

	return fmt.Sprintf("%06d", code), nil
}

// Verify reports whether code is valid for secret at the current time.
// See VerifyAt for the error contract.
func Verify(secret, code string) (bool, error) {
	return VerifyAt(secret, code, time.Now())
}

// VerifyAt reports whether code is valid for secret at instant t, accepting
// the previous, current and next time steps to absorb clock drift.
//
// Malformed input never panics: a secret that is not valid Base32 yields
// (false, ErrInvalidSecret) and a code that is not exactly six digits yields
// (false, ErrInvalidCode), so callers can fold malformation into a plain
// failed verification while keeping the cause observable. A well-formed code
// that matches no step in the window yields (false, nil).
func VerifyAt(secret, code string, t time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCode
	}

	counter := t.Unix() / int64(Period)
	for off := -Skew; off <= Skew; off++ {
		candidate := GenerateHOTP(key, counter+int64(off), Digits)
		if fmt.Sprintf("%06d", candidate) == code {
			return true, nil
		}
	}

	return false, nil
}

// RemainingSeconds returns how many seconds of validity the current code has
// left, in [1, Period]. Intended for countdown display only.
func RemainingSeconds() int {
	return RemainingSecondsAt(time.Now())
}

// RemainingSecondsAt returns the seconds of validity left at instant t.
func RemainingSecondsAt(t time.Time) int {
	return Period - int(t.Unix()%int64(Period))
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm,
// converting a counter value into a numeric code via HMAC-SHA1 and dynamic
// truncation.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Counter is encoded big-endian into 8 bytes (RFC 4226 requirement).
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects the offset,
	// and the MSB of the extracted word is cleared to keep the value positive.
	offset := sum[len(sum)-1] & 0x0f
	value := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		int(sum[offset+3]&0xff)

	return value % int(math.Pow10(digits))
}

// decodeSecret normalizes and decodes a Base32 shared secret.
func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !SecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := b32.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}
