// Package storage persists uploaded attachments (request photos and design
// images) and resolves them to URLs.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

const (
	FolderPhotos  = "request_photos"
	FolderDesigns = "designs"

	// MaxImageSize is the largest accepted image upload.
	MaxImageSize = 2 << 20
)

var (
	ErrUnsupportedExtension = errors.New("only .png, .jpg and .jpeg files are allowed")
	ErrTooLarge             = errors.New("file must not exceed 2 MiB")
	ErrEmptyFile            = errors.New("file is empty")
)

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// File is an upload as received from the client.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// Store abstracts the attachment backend.
type Store interface {
	// Put writes f under folder and returns its key.
	Put(ctx context.Context, folder string, f File) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(path.Ext(name))
}

// ValidateImage checks extension and size of an image upload.
func ValidateImage(f File) error {
	if _, ok := imageExtensions[Ext(f.Name)]; !ok {
		return ErrUnsupportedExtension
	}
	if f.Size <= 0 {
		return ErrEmptyFile
	}
	if f.Size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}

func contentType(name string) string {
	if ct, ok := imageExtensions[Ext(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}

func objectKey(folder, id, name string) string {
	return folder + "/" + id + Ext(name)
}
