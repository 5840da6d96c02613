package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/media"
)

const multipartMemoryLimit = 32 << 20 // 32MB in memory, the rest spills to disk

// spoolUploads copies every file under the given form field into the temp
// upload dir and hands back descriptors the processor can consume.
func spoolUploads(r *http.Request, field, tempDir string) ([]media.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var uploads []media.Upload
	for _, header := range r.MultipartForm.File[field] {
		path, err := spoolFile(header, tempDir)
		if err != nil {
			return nil, errs.NewProcessingError("spool", header.Filename, err)
		}
		uploads = append(uploads, media.Upload{
			Path:     path,
			Filename: header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
		})
	}
	return uploads, nil
}

func spoolFile(header *multipart.FileHeader, tempDir string) (string, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(tempDir, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// formValue returns the first value for key and whether the field was sent at
// all, so absent and empty are distinguishable on partial updates.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
