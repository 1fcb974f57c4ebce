package services

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tiny valid PNG header bytes, enough for a decode round trip
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestParseSignatureDataURL(t *testing.T) {
	t.Run("ValidPNG", func(t *testing.T) {
		data, contentType, ext, err := ParseSignatureDataURL(pngDataURL())
		assert.NoError(t, err)
		assert.Equal(t, pngBytes, data)
		assert.Equal(t, "image/png", contentType)
		assert.Equal(t, ".png", ext)
	})

	t.Run("ValidJPEG", func(t *testing.T) {
		url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8})
		_, contentType, ext, err := ParseSignatureDataURL(url)
		assert.NoError(t, err)
		assert.Equal(t, "image/jpeg", contentType)
		assert.Equal(t, ".jpg", ext)
	})

	t.Run("NotADataURL", func(t *testing.T) {
		_, _, _, err := ParseSignatureDataURL("https://example.com/sig.png")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		url := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>"))
		_, _, _, err := ParseSignatureDataURL(url)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("NotBase64Encoded", func(t *testing.T) {
		_, _, _, err := ParseSignatureDataURL("data:image/png,rawdata")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("BadPayload", func(t *testing.T) {
		_, _, _, err := ParseSignatureDataURL("data:image/png;base64,!!!not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		_, _, _, err := ParseSignatureDataURL("data:image/png;base64,")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("TooLarge", func(t *testing.T) {
		big := strings.Repeat("A", base64.StdEncoding.EncodedLen(MaxSignatureBytes+1024))
		_, _, _, err := ParseSignatureDataURL("data:image/png;base64," + big)
		assert.ErrorIs(t, err, ErrSignatureTooLarge)
	})
}

func TestStoreSignature(t *testing.T) {
	prev := Storage
	Storage = NewLocalStorage(t.TempDir())
	defer func() { Storage = prev }()

	key, err := StoreSignature(context.Background(), pngDataURL())
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "signatures/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	reader, contentType, err := Storage.Get(context.Background(), key)
	assert.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)
}
