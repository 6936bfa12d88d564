package backupcode

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultCount is the batch size issued during enrollment.
	DefaultCount = 10

	// codeBytes is the entropy drawn per code; 16 bytes render as 32 hex
	// characters (128 bits, above the 112-bit floor for long-lived secrets).
	codeBytes = 16

	// groupSize is the display chunk length used by Format.
	groupSize = 4
)

// compareDigests is a seam for tests that count comparison invocations.
var compareDigests = subtle.ConstantTimeCompare

// Generate returns count fresh recovery codes, each rendered as 32 uppercase
// hexadecimal characters. Codes are drawn independently from crypto/rand and
// are guaranteed unique within the returned batch.
func Generate(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidCodeCount
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for len(codes) < count {
		buf := make([]byte, codeBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerateCode, err)
		}
		code := fmt.Sprintf("%X", buf)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// Hash returns the hex-encoded SHA-256 digest of the normalized code.
// Normalization uppercases the input and strips every character outside
// [A-Z0-9], so display formatting and typing quirks never change the digest.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(normalize(code)))
	return hex.EncodeToString(sum[:])
}

// HashAll maps Hash over codes, preserving order.
func HashAll(codes []string) []string {
	digests := make([]string, len(codes))
	for i, code := range codes {
		digests[i] = Hash(code)
	}
	return digests
}

// Verify reports whether the presented code matches any stored digest.
// Every digest is compared in constant time and the scan never exits early,
// so neither timing nor comparison count reveals which position matched.
// An empty digest list never matches.
func Verify(code string, digests []string) bool {
	computed := []byte(Hash(code))

	matched := 0
	for _, digest := range digests {
		matched |= compareDigests([]byte(digest), computed)
	}
	return matched == 1
}

// Format renders a code as dash-joined groups of four characters for
// display, e.g. "1A2B-3C4D-…". Inputs of four or fewer characters are
// returned unchanged.
func Format(code string) string {
	if len(code) <= groupSize {
		return code
	}

	var b strings.Builder
	b.Grow(len(code) + (len(code)-1)/groupSize)
	for i := 0; i < len(code); i++ {
		if i > 0 && i%groupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(code[i])
	}
	return b.String()
}

// Parse strips display formatting from user input: separators are removed
// and the result is uppercased. It is the inverse of Format composed with
// normalization, so Parse(Format(code)) == code for generated codes.
func Parse(display string) string {
	return normalize(display)
}

func normalize(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range strings.ToUpper(code) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
