package models

import (
	"time"
)

// Incident - опубликованный отчет о происшествии. Запись создается один раз
// и после вставки не изменяется и не удаляется этим сервисом.
type Incident struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	MediaURLs   []string  `json:"media_urls"`
	CreatedAt   time.Time `json:"created_at"`
}
