package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormLink(t *testing.T) {
	assert.Equal(t, "https://feedback.example.com/forms/abc", FormLink("https://feedback.example.com/", "abc"))
	assert.Equal(t, "http://localhost:3000/forms/a%2Fb", FormLink("http://localhost:3000", "a/b"))
}

func TestGenerateQRCode(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"default size", 0, DefaultSize},
		{"custom size", 300, 300},
		{"clamped", 5000, MaxSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := GenerateQRCode("http://localhost:3000/forms/abc", tt.size)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.Bounds().Dx())
		})
	}
}
