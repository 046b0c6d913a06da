package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestImageProcessor_ResizeCover(t *testing.T) {
	p := NewImageProcessor()

	out, err := p.ResizeCover(pngBytes(t, 1600, 1600))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, CoverMaxWidth, img.Bounds().Dx())
	assert.Equal(t, CoverMaxWidth, img.Bounds().Dy())
}

func TestImageProcessor_SmallCoverNotUpscaled(t *testing.T) {
	out, err := NewImageProcessor().ResizeCover(pngBytes(t, 100, 150))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestImageProcessor_Rejects(t *testing.T) {
	p := NewImageProcessor()

	assert.Error(t, p.ValidateImage(nil))
	assert.Error(t, p.ValidateImage([]byte("plain text")))

	p.MaxSize = 10
	assert.Error(t, p.ValidateImage(pngBytes(t, 10, 10)))
}

func TestCoverKeys(t *testing.T) {
	assert.Equal(t, "books/abc/cover_42.jpg", CoverKey("abc", 42))
	assert.Equal(t, "books/abc/", CoverPrefix("abc"))
	assert.Equal(t, "http://localhost:9000/library/books/abc/cover_1.jpg",
		ObjectURL("http", "localhost:9000", "library", "/books/abc/cover_1.jpg"))
}
