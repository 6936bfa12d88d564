package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content string is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToRender is returned when the underlying encoder could not render the code.
	ErrFailedToRender = errors.New("could not render QR code")
)

// DefaultSize is the edge length in pixels used when no size is specified.
const DefaultSize = 256

// Render encodes content, typically an otpauth:// provisioning URI, into a
// PNG QR code with medium error correction. Encoder failures surface as
// ErrFailedToRender; they are never retried here.
func Render(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToRender, err)
	}
	return png, nil
}

// RenderDataURI renders content as a data:image/png;base64 URI that can be
// embedded directly into an <img> tag during enrollment.
func RenderDataURI(content string, size int) (string, error) {
	png, err := Render(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
