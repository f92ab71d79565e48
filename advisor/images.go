package advisor

import (
	"encoding/base64"
	"strings"
)

// ParseDataURL splits a "data:<mime>;base64,<data>" string into a Blob. The
// payload is passed through still encoded.
func ParseDataURL(s string) (Blob, bool) {
	header, data, ok := strings.Cut(s, ",")
	if !ok || data == "" {
		return Blob{}, false
	}
	_, rest, ok := strings.Cut(header, ":")
	if !ok {
		return Blob{}, false
	}
	mime, _, _ := strings.Cut(rest, ";")
	if mime == "" {
		return Blob{}, false
	}
	return Blob{MimeType: mime, Data: data}, true
}

// DataURL is the inverse of ParseDataURL for raw bytes.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
