// Package blobstore stores uploaded images and hands back their public URLs.
package blobstore

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the remote image store. Delete reports false when the object was
// already gone.
type Store interface {
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) (bool, error)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	safe := unsafeChars.ReplaceAllString(base, "_")
	if safe == "" || safe == "." || safe == "_" {
		return "image"
	}
	return safe
}

// NewObjectName builds folder/YYYYMMDD-uuid-name so two uploads of the same
// file never collide.
func NewObjectName(folder, originalFilename string) string {
	return fmt.Sprintf("%s/%s-%s-%s",
		strings.Trim(folder, "/"),
		time.Now().Format("20060102"),
		uuid.New().String(),
		sanitizeFilename(originalFilename),
	)
}
