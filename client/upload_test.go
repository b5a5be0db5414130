package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/envelope"
)

func TestOpenUpload(t *testing.T) {
	dir := t.TempDir()

	named := filepath.Join(dir, "photo.PNG")
	require.NoError(t, os.WriteFile(named, pngBytes, 0o600))
	u, err := OpenUpload(named)
	require.NoError(t, err)
	assert.Equal(t, "photo.PNG", u.Filename)
	assert.Equal(t, "image/png", u.ContentType)

	sniffed := filepath.Join(dir, "photo")
	require.NoError(t, os.WriteFile(sniffed, pngBytes, 0o600))
	u, err = OpenUpload(sniffed)
	require.NoError(t, err)
	assert.Equal(t, "image/png", u.ContentType)

	_, err = OpenUpload(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestValidateImage(t *testing.T) {
	testCases := []struct {
		name string
		in   *Upload
		code envelope.Code
	}{
		{"jpeg", &Upload{ContentType: "image/jpeg", Data: []byte{1}}, ""},
		{"webp", &Upload{ContentType: "image/webp", Data: []byte{1}}, ""},
		{"gif", &Upload{ContentType: "image/gif", Data: []byte{1}}, ""},
		{"exact limit", &Upload{ContentType: "image/png", Data: make([]byte, MaxImageSize)}, ""},
		{"over limit", &Upload{ContentType: "image/png", Data: make([]byte, MaxImageSize+1)}, envelope.CodeValidation},
		{"svg", &Upload{ContentType: "image/svg+xml", Data: []byte{1}}, envelope.CodeValidation},
		{"empty", &Upload{ContentType: "image/png"}, envelope.CodeRequiredField},
		{"nil", nil, envelope.CodeRequiredField},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := ValidateImage(tc.in)
			if tc.code == "" {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, tc.code, f.Code)
			assert.Equal(t, "image", f.Field)
		})
	}
}
