package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MaxSignatureBytes caps the decoded size of an uploaded signature image
const MaxSignatureBytes = 1 << 20 // 1 MB

var (
	ErrInvalidSignature  = errors.New("invalid signature image")
	ErrSignatureTooLarge = errors.New("signature image exceeds size limit")
)

// signatureTypes maps the accepted data URL media types to file extensions
var signatureTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ParseSignatureDataURL decodes a "data:image/...;base64," payload drawn on
// the application form's signature pad. Only raster image types are
// accepted and the decoded size is capped.
func ParseSignatureDataURL(dataURL string) (data []byte, contentType string, ext string, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, "", "", ErrInvalidSignature
	}

	meta, payload, found := strings.Cut(dataURL[len(prefix):], ",")
	if !found {
		return nil, "", "", ErrInvalidSignature
	}

	mediaType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, "", "", ErrInvalidSignature
	}

	ext, ok := signatureTypes[mediaType]
	if !ok {
		return nil, "", "", fmt.Errorf("%w: unsupported type %s", ErrInvalidSignature, mediaType)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxSignatureBytes {
		return nil, "", "", ErrSignatureTooLarge
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(data) == 0 {
		return nil, "", "", ErrInvalidSignature
	}

	return data, mediaType, ext, nil
}

// StoreSignature decodes a signature data URL and saves the image to the
// configured storage provider, returning its storage key
func StoreSignature(ctx context.Context, dataURL string) (string, error) {
	data, contentType, ext, err := ParseSignatureDataURL(dataURL)
	if err != nil {
		return "", err
	}

	key := GenerateSignatureKey(ext)
	if err := Storage.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("failed to store signature: %w", err)
	}
	return key, nil
}
