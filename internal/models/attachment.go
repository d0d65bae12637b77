package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileUpload - сырой файл, предложенный пользователем для стейджинга
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Allowed сообщает, разрешен ли файл к стейджингу: принимаются только
// image/* и video/* MIME-типы.
func (f FileUpload) Allowed() bool {
	return strings.HasPrefix(f.ContentType, "image/") ||
		strings.HasPrefix(f.ContentType, "video/")
}

// Attachment - застейдженное, еще не загруженное вложение. Существует только
// на стороне клиента формы, от выбора файла до отправки или удаления.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
	preview     *Preview
}

// NewAttachment создает вложение и спулит его превью во временный файл
func NewAttachment(f FileUpload) (*Attachment, error) {
	preview, err := NewPreview(f.Data, filepath.Ext(f.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment preview: %w", err)
	}
	return &Attachment{
		Name:        f.Name,
		ContentType: f.ContentType,
		Data:        f.Data,
		preview:     preview,
	}, nil
}

// Preview возвращает эфемерную локальную ссылку на данные вложения
func (a *Attachment) Preview() *Preview {
	return a.preview
}

// ReleasePreview освобождает превью вложения. Безопасен при повторном вызове.
func (a *Attachment) ReleasePreview() error {
	if a.preview == nil {
		return nil
	}
	return a.preview.Release()
}

// Preview - локальная эфемерная ссылка на бинарные данные вложения,
// аналог object URL. Обязана быть освобождена на каждом пути выхода,
// иначе временные файлы накапливаются между повторными отправками формы.
type Preview struct {
	path     string
	released bool
}

// NewPreview спулит данные во временный файл с сохранением расширения
func NewPreview(data []byte, ext string) (*Preview, error) {
	tmp, err := os.CreateTemp("", "satarknity-preview-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write preview file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to close preview file: %w", err)
	}

	return &Preview{path: tmp.Name()}, nil
}

// Path возвращает локальный путь превью или пустую строку после освобождения
func (p *Preview) Path() string {
	if p.released {
		return ""
	}
	return p.path
}

// Released сообщает, освобождено ли превью
func (p *Preview) Released() bool {
	return p.released
}

// Release удаляет временный файл превью. Повторный вызов - no-op.
func (p *Preview) Release() error {
	if p.released {
		return nil
	}
	p.released = true
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release preview: %w", err)
	}
	return nil
}
