package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want MediaKind
	}{
		{"jpeg", "https://cdn.example.com/storage/v1/object/public/incidentmedia/u1/a.jpeg", MediaKindImage},
		{"jpg uppercase", "https://cdn.example.com/u1/PHOTO.JPG", MediaKindImage},
		{"png", "https://cdn.example.com/u1/b.png", MediaKindImage},
		{"gif", "https://cdn.example.com/u1/b.gif", MediaKindImage},
		{"mp4", "https://cdn.example.com/u1/clip.mp4", MediaKindVideo},
		{"mov", "https://cdn.example.com/u1/clip.mov", MediaKindVideo},
		{"webm", "https://cdn.example.com/u1/clip.webm", MediaKindVideo},
		{"query after extension defeats match", "https://cdn.example.com/u1/clip.webm?token=abc", MediaKindUnsupported},
		{"pdf", "https://cdn.example.com/u1/doc.pdf", MediaKindUnsupported},
		{"no extension", "https://cdn.example.com/u1/noext", MediaKindUnsupported},
		{"empty", "", MediaKindUnsupported},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindForURL(tc.url))
		})
	}
}
