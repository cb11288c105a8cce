package handlers

import (
	"errors"
	"net/http"

	"design-pro/internal/storage"
	"design-pro/internal/utils"
)

const (
	// maxUploadBody caps a whole multipart body. Single images are held to
	// storage.MaxImageSize by the services so oversize files still come back
	// as field errors.
	maxUploadBody   = 16 << 20
	maxUploadMemory = 8 << 20
)

// parseMultipart reads a multipart form and writes the error response itself
// when that fails. The returned func releases temporary files.
func parseMultipart(w http.ResponseWriter, r *http.Request) (func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		utils.Error(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, true
}

// formFile returns the upload named field, or nil when the client sent none.
func formFile(r *http.Request, field string) (*storage.File, func(), error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &storage.File{Name: hdr.Filename, Size: hdr.Size, Body: f}, func() { _ = f.Close() }, nil
}
