package models

import (
	"path"
	"strings"
)

// MediaKind - режим отображения вложения в ленте
type MediaKind string

const (
	MediaKindImage       MediaKind = "image"
	MediaKindVideo       MediaKind = "video"
	MediaKindUnsupported MediaKind = "unsupported"
)

var (
	imageExtensions = map[string]struct{}{
		".jpeg": {}, ".jpg": {}, ".gif": {}, ".png": {},
	}
	videoExtensions = map[string]struct{}{
		".mp4": {}, ".webm": {}, ".ogg": {}, ".mov": {},
	}
)

// KindForURL классифицирует вложение только по расширению в самом конце URL,
// без content sniffing. URL без расширения, с неизвестным расширением или с
// query string после расширения всегда попадает в MediaKindUnsupported.
// Публичные URL хранилища query string не несут.
func KindForURL(rawURL string) MediaKind {
	ext := strings.ToLower(path.Ext(rawURL))

	if _, ok := imageExtensions[ext]; ok {
		return MediaKindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return MediaKindVideo
	}
	return MediaKindUnsupported
}
