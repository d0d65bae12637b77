package service

import (
	"fmt"

	"github.com/satarknity/community_alerts/internal/models"
)

// MaxAttachments - максимум застейдженных вложений на один черновик
const MaxAttachments = 2

// Draft - черновик отчета: введенный текст плюс застейдженные вложения.
// Черновик живет только на стороне клиента формы; Reset обязателен на
// каждом пути выхода, чтобы превью не накапливались.
type Draft struct {
	Description string
	Location    string

	attachments []*models.Attachment
}

// NewDraft создает пустой черновик отчета
func NewDraft() *Draft {
	return &Draft{}
}

// AddAttachments стейджит пакет файлов. Если принятие пакета целиком превысило
// бы лимит, весь пакет отклоняется без частичного принятия - проверка лимита
// идет до фильтрации по MIME-типу. Затем каждый файл с MIME вне image/* и
// video/* отбрасывается индивидуально (его имя попадает в rejected), остальные
// файлы пакета принимаются.
func (d *Draft) AddAttachments(files ...models.FileUpload) (rejected []string, err error) {
	if len(files) == 0 {
		return nil, nil
	}

	if len(d.attachments)+len(files) > MaxAttachments {
		return nil, ErrTooManyAttachments
	}

	staged := make([]*models.Attachment, 0, len(files))
	for _, f := range files {
		if !f.Allowed() {
			rejected = append(rejected, f.Name)
			continue
		}

		att, err := models.NewAttachment(f)
		if err != nil {
			// Откатываем превью, созданные в рамках этого вызова
			for _, s := range staged {
				_ = s.ReleasePreview()
			}
			return nil, fmt.Errorf("failed to stage attachment %q: %w", f.Name, err)
		}
		staged = append(staged, att)
	}

	d.attachments = append(d.attachments, staged...)
	return rejected, nil
}

// RemoveAttachment освобождает превью вложения с индексом i и убирает его из
// черновика, сохраняя относительный порядок остальных
func (d *Draft) RemoveAttachment(i int) error {
	if i < 0 || i >= len(d.attachments) {
		return fmt.Errorf("attachment index %d out of range", i)
	}

	releaseErr := d.attachments[i].ReleasePreview()
	d.attachments = append(d.attachments[:i], d.attachments[i+1:]...)
	return releaseErr
}

// Attachments возвращает копию списка застейдженных вложений
func (d *Draft) Attachments() []*models.Attachment {
	out := make([]*models.Attachment, len(d.attachments))
	copy(out, d.attachments)
	return out
}

// Len возвращает число застейдженных вложений
func (d *Draft) Len() int {
	return len(d.attachments)
}

// Reset очищает черновик и освобождает все превью. Идемпотентен.
func (d *Draft) Reset() {
	for _, att := range d.attachments {
		_ = att.ReleasePreview()
	}
	d.attachments = nil
	d.Description = ""
	d.Location = ""
}
