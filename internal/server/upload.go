package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/errs"
	"github.com/perzonai/persona-engine/internal/ingest"
	"github.com/perzonai/persona-engine/internal/models"
)

var (
	errFileTooLarge = errors.New("file too large, maximum size is 10MB")
	errBadFileType  = errors.New("invalid file type, only CSV, JSON, and TXT files are allowed")
)

// Upload accepts one CSV/JSON/text file and returns its processed
// summary. Type and size are checked before any content is read.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "no file provided")
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if !ingest.Allowed(mimeType) {
		fail(c, http.StatusBadRequest, errBadFileType.Error())
		return
	}
	if fh.Size > h.cfg.MaxUploadSize {
		fail(c, http.StatusBadRequest, errFileTooLarge.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to read file")
		return
	}

	processed, err := ingest.Process(fh.Filename, mimeType, content, h.cfg.MaxUploadSize)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errs.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		fail(c, status, err.Error())
		return
	}

	h.log.Info("processed upload",
		zap.String("file", fh.Filename),
		zap.String("type", processed.Type),
		zap.Int64("size", fh.Size),
	)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"fileId":        models.NewFileID(),
		"fileName":      fh.Filename,
		"fileSize":      fh.Size,
		"fileType":      processed.Type,
		"processedData": processed.ProcessedData,
		"uploadedAt":    time.Now().UTC(),
	})
}
