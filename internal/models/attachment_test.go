package models

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileUpload_Allowed(t *testing.T) {
	assert.True(t, FileUpload{ContentType: "image/png"}.Allowed())
	assert.True(t, FileUpload{ContentType: "video/mp4"}.Allowed())
	assert.False(t, FileUpload{ContentType: "application/pdf"}.Allowed())
	assert.False(t, FileUpload{ContentType: ""}.Allowed())
}

func TestPreview_ReleaseRemovesFile(t *testing.T) {
	preview, err := NewPreview([]byte("payload"), ".png")
	require.NoError(t, err)

	// Файл превью существует до освобождения
	_, err = os.Stat(preview.Path())
	require.NoError(t, err)

	require.NoError(t, preview.Release())
	assert.True(t, preview.Released())
	assert.Empty(t, preview.Path())

	// Повторное освобождение - no-op
	require.NoError(t, preview.Release())
}

func TestNewAttachment_SpoolsPreview(t *testing.T) {
	att, err := NewAttachment(FileUpload{
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	require.NoError(t, err)
	defer att.ReleasePreview()

	data, err := os.ReadFile(att.Preview().Path())
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}
