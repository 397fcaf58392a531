package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func newStore(t *testing.T, max int64) (*LocalStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, "http://localhost:4000/", max)
	require.NoError(t, err)
	return store, dir
}

func TestLocalStore_Save(t *testing.T) {
	store, dir := newStore(t, 1024)

	img, err := store.Save(context.Background(), "Car Photo.PNG", bytes.NewReader(pngBytes))

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(img.Filename, ".png"))
	assert.Equal(t, "http://localhost:4000/uploads/"+img.Filename, img.URL)
	assert.Equal(t, int64(len(pngBytes)), img.Size)

	written, err := os.ReadFile(filepath.Join(dir, img.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)
}

func TestLocalStore_Rejects(t *testing.T) {
	store, _ := newStore(t, 16)

	cases := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "unsupported extension", filename: "notes.txt", data: []byte("hello")},
		{name: "too large", filename: "big.png", data: pngBytes},
		{name: "empty", filename: "empty.png", data: nil},
		{name: "content mismatch", filename: "fake.jpg", data: []byte("plain text here")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Save(context.Background(), tc.filename, bytes.NewReader(tc.data))
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, "image", apperror.FieldsOf(err)[0].Field)
		})
	}
}

func TestLocalStore_UniqueNames(t *testing.T) {
	store, _ := newStore(t, 1024)

	a, err := store.Save(context.Background(), "a.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	b, err := store.Save(context.Background(), "a.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.NotEqual(t, a.Filename, b.Filename)
}
