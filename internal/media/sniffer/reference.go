package sniffer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidReference = errors.New("invalid image reference")

// MaxInlineBytes caps the decoded size of an inline (data URL) image.
const MaxInlineBytes = 2 << 20

type ReferenceKind string

const (
	KindRemote ReferenceKind = "remote"
	KindInline ReferenceKind = "inline"
)

// Reference is a parsed image reference. Data is set only for inline images.
type Reference struct {
	Kind  ReferenceKind
	Media Result
	Data  []byte
	Raw   string
}

// ParseReference accepts an absolute http(s) URL or a base64 data URL whose
// payload sniffs as the image type it declares.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "data:") {
		return parseDataURL(raw)
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Reference{}, fmt.Errorf("%w: want http(s) or data URL", ErrInvalidReference)
	}
	return Reference{Kind: KindRemote, Raw: u.String()}, nil
}

func parseDataURL(raw string) (Reference, error) {
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return Reference{}, fmt.Errorf("%w: missing data", ErrInvalidReference)
	}
	mime, params, _ := strings.Cut(header, ";")
	if !strings.EqualFold(params, "base64") {
		return Reference{}, fmt.Errorf("%w: data URL must be base64", ErrInvalidReference)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxInlineBytes+3 {
		return Reference{}, fmt.Errorf("%w: larger than %d bytes", ErrInvalidReference, MaxInlineBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	media, err := Verify(mime, data)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return Reference{Kind: KindInline, Media: media, Data: data, Raw: raw}, nil
}

// DataURL encodes data as a base64 data URL of the given MIME type.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
