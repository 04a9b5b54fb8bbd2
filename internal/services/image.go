package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	chat_errors "cipher-chat/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
)

// DecodedImage is an image payload ready for upload.
type DecodedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImagePayload accepts either a data URL ("data:image/png;base64,...")
// or bare base64 and returns the bytes with their sniffed content type. The
// declared media type of a data URL is ignored in favour of the sniffed one.
func DecodeImagePayload(payload string, maxBytes int64) (DecodedImage, error) {
	encoded := strings.TrimSpace(payload)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.IndexByte(encoded, ',')
		if comma < 0 || !strings.HasSuffix(encoded[:comma], ";base64") {
			return DecodedImage{}, fmt.Errorf("%w: image must be a base64 data url", chat_errors.ErrInvalidInput)
		}
		encoded = encoded[comma+1:]
	}
	if encoded == "" {
		return DecodedImage{}, fmt.Errorf("%w: empty image", chat_errors.ErrInvalidInput)
	}

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxBytes+2 {
		return DecodedImage{}, chat_errors.ErrTooLarge
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return DecodedImage{}, fmt.Errorf("%w: image is not valid base64", chat_errors.ErrInvalidInput)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return DecodedImage{}, chat_errors.ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return DecodedImage{}, fmt.Errorf("%w: %s", chat_errors.ErrUnsupportedMedia, mt.String())
	}

	return DecodedImage{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

func decodeBase64(encoded string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(encoded); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("invalid base64")
}
