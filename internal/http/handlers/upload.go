package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchcatalog-backend/internal/ingestion/folder"
)

var errNoFiles = errors.New("no files uploaded")

// uploadedFiles reads the multipart "files" parts. The optional parallel
// "paths" values carry each file's folder-relative path, since browsers
// report only the base name for directory uploads.
func uploadedFiles(c *gin.Context, maxMemory int64) ([]folder.File, error) {
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		return nil, errNoFiles
	}
	headers := form.File["files"]
	paths := form.Value["paths"]
	if len(paths) > 0 && len(paths) != len(headers) {
		return nil, fmt.Errorf("got %d paths for %d files", len(paths), len(headers))
	}

	files := make([]folder.File, 0, len(headers))
	for i, fh := range headers {
		name := fh.Filename
		if len(paths) > 0 && strings.TrimSpace(paths[i]) != "" {
			name = strings.TrimSpace(paths[i])
		}
		files = append(files, folder.File{Path: name, Open: openPart(fh)})
	}
	return files, nil
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}
