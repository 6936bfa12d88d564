// Package qrcode renders TOTP provisioning URIs as QR codes for the
// enrollment screen.
//
// It is a thin wrapper around github.com/skip2/go-qrcode producing either raw
// PNG bytes (Render) or an embeddable data URI (RenderDataURI). Rendering
// failures are reported as the generic ErrFailedToRender and left to the
// caller; the renderer never retries.
package qrcode
