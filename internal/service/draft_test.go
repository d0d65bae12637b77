package service

import (
	"os"
	"testing"

	"github.com/satarknity/community_alerts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageFile(name string) models.FileUpload {
	return models.FileUpload{Name: name, ContentType: "image/png", Data: []byte("png")}
}

func TestDraft_AddAttachments_RejectsWholeBatchOverCap(t *testing.T) {
	draft := NewDraft()

	// Пакет из трех файлов отклоняется целиком, без частичного принятия
	rejected, err := draft.AddAttachments(imageFile("a.png"), imageFile("b.png"), imageFile("c.png"))

	require.ErrorIs(t, err, ErrTooManyAttachments)
	assert.Empty(t, rejected)
	assert.Equal(t, 0, draft.Len())
}

func TestDraft_AddAttachments_CapAcrossCalls(t *testing.T) {
	draft := NewDraft()
	defer draft.Reset()

	_, err := draft.AddAttachments(imageFile("a.png"), imageFile("b.png"))
	require.NoError(t, err)
	require.Equal(t, 2, draft.Len())

	// Третий файл отдельным вызовом тоже не проходит
	_, err = draft.AddAttachments(imageFile("c.png"))
	require.ErrorIs(t, err, ErrTooManyAttachments)
	assert.Equal(t, 2, draft.Len())
}

func TestDraft_AddAttachments_DropsUnsupportedTypeIndividually(t *testing.T) {
	draft := NewDraft()
	defer draft.Reset()

	// Невалидный по MIME файл отбрасывается, валидный из того же пакета принимается
	rejected, err := draft.AddAttachments(
		models.FileUpload{Name: "report.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
		imageFile("a.png"),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf"}, rejected)
	require.Equal(t, 1, draft.Len())
	assert.Equal(t, "a.png", draft.Attachments()[0].Name)
}

func TestDraft_AddAttachments_CapCheckedBeforeTypeFilter(t *testing.T) {
	draft := NewDraft()

	// Лимит проверяется до фильтрации по типу: пакет из трех файлов
	// отклоняется, даже если после фильтрации осталось бы два
	_, err := draft.AddAttachments(
		imageFile("a.png"),
		imageFile("b.png"),
		models.FileUpload{Name: "report.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	)

	require.ErrorIs(t, err, ErrTooManyAttachments)
	assert.Equal(t, 0, draft.Len())
}

func TestDraft_RemoveAttachment_PreservesOrderAndReleasesPreview(t *testing.T) {
	draft := NewDraft()
	defer draft.Reset()

	_, err := draft.AddAttachments(imageFile("a.png"), imageFile("b.png"))
	require.NoError(t, err)

	removed := draft.Attachments()[0]
	previewPath := removed.Preview().Path()

	require.NoError(t, draft.RemoveAttachment(0))

	require.Equal(t, 1, draft.Len())
	assert.Equal(t, "b.png", draft.Attachments()[0].Name)
	assert.True(t, removed.Preview().Released())
	_, statErr := os.Stat(previewPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDraft_RemoveAttachment_IndexOutOfRange(t *testing.T) {
	draft := NewDraft()
	require.Error(t, draft.RemoveAttachment(0))
	require.Error(t, draft.RemoveAttachment(-1))
}

func TestDraft_Reset_ReleasesAllPreviews(t *testing.T) {
	draft := NewDraft()
	draft.Description = "Suspicious vehicle"
	draft.Location = "5th & Main"

	_, err := draft.AddAttachments(imageFile("a.png"), imageFile("b.png"))
	require.NoError(t, err)
	staged := draft.Attachments()

	draft.Reset()

	assert.Equal(t, 0, draft.Len())
	assert.Empty(t, draft.Description)
	assert.Empty(t, draft.Location)
	for _, att := range staged {
		assert.True(t, att.Preview().Released())
	}

	// Повторный Reset безопасен
	draft.Reset()
}
