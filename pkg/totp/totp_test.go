package totp_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/immigration-ai/authkit/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfcSecret is the ASCII key "12345678901234567890" from RFC 4226/6238
// appendices, Base32-encoded.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, totp.SecretKeyRegex, secret)
	assert.Len(t, secret, 32) // 20 bytes -> 32 unpadded Base32 chars

	other, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  totp.URIParams
		want    string
		wantErr error
	}{
		{
			name: "basic URI",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test@example.com",
				Issuer:      "TestApp",
			},
			want: "otpauth://totp/TestApp:test@example.com?algorithm=SHA1&digits=6&issuer=TestApp&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "issuer defaults to product name",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test@example.com",
			},
			want: "otpauth://totp/Immigration%20AI:test@example.com?algorithm=SHA1&digits=6&issuer=Immigration+AI&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "special characters escaped",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test+user@example.com",
				Issuer:      "Test & App",
			},
			want: "otpauth://totp/Test%20&%20App:test+user@example.com?algorithm=SHA1&digits=6&issuer=Test+%26+App&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "missing secret",
			params: totp.URIParams{
				AccountName: "test@example.com",
			},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name: "invalid secret",
			params: totp.URIParams{
				Secret:      "not-base32!",
				AccountName: "test@example.com",
			},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name: "missing account name",
			params: totp.URIParams{
				Secret: "ABCDEFGHIJKLMNOP",
			},
			wantErr: totp.ErrMissingAccountName,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ProvisioningURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateAtVectors(t *testing.T) {
	t.Parallel()

	// RFC 6238 Appendix B SHA-1 vectors reduced to six digits; the second
	// and third rows exercise zero-padding of the formatted code.
	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	for _, tt := range tests {
		code, err := totp.GenerateAt(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, code, "unix %d", tt.unix)
	}
}

func TestVerifyAtRoundTrip(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	for _, unix := range []int64{59, 1111111109, 1234567890, 2000000000} {
		at := time.Unix(unix, 0)
		code, err := totp.GenerateAt(secret, at)
		require.NoError(t, err)

		ok, err := totp.VerifyAt(secret, code, at)
		require.NoError(t, err)
		assert.True(t, ok, "unix %d", unix)
	}
}

func TestVerifyAtTimeWindow(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	// Fixed instant so the step offsets below are exact.
	base := time.Unix(1700000015, 0)
	code, err := totp.GenerateAt(secret, base)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"one step behind", base.Add(-30 * time.Second), true},
		{"same step", base, true},
		{"one step ahead", base.Add(30 * time.Second), true},
		{"two steps ahead", base.Add(60 * time.Second), false},
		{"two steps behind", base.Add(-60 * time.Second), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.VerifyAt(secret, code, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerifyAtMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		code    string
		wantErr error
	}{
		{"invalid base32 secret", "invalid-base32!@#$", "123456", totp.ErrInvalidSecret},
		{"empty secret", "", "123456", totp.ErrInvalidSecret},
		{"code too short", rfcSecret, "12345", totp.ErrInvalidCode},
		{"code too long", rfcSecret, "1234567", totp.ErrInvalidCode},
		{"non-numeric code", rfcSecret, "12345a", totp.ErrInvalidCode},
		{"empty code", rfcSecret, "", totp.ErrInvalidCode},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.VerifyAt(tt.secret, tt.code, time.Unix(59, 0))
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifyAtNoMatch(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000015, 0)

	// Collect the three codes the window accepts, then present one that is
	// well-formed but guaranteed to differ from all of them.
	accepted := map[string]bool{}
	for _, d := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := totp.GenerateAt(rfcSecret, at.Add(d))
		require.NoError(t, err)
		accepted[code] = true
	}

	wrong := "000000"
	for i := 0; accepted[wrong]; i++ {
		wrong = fmt.Sprintf("%06d", i+1)
	}

	ok, err := totp.VerifyAt(rfcSecret, wrong, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateHOTPVectors(t *testing.T) {
	t.Parallel()

	// RFC 4226 Appendix D vectors for the ASCII key "12345678901234567890".
	key := []byte("12345678901234567890")
	want := []int{755224, 287082, 359152, 969429, 338314}

	for counter, expected := range want {
		assert.Equal(t, expected, totp.GenerateHOTP(key, int64(counter), 6), "counter %d", counter)
	}
}

func TestRemainingSecondsAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		unix int64
		want int
	}{
		{1700000010, 30}, // step boundary
		{1700000011, 29},
		{1700000039, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, totp.RemainingSecondsAt(time.Unix(tt.unix, 0)), "unix %d", tt.unix)
	}
}
