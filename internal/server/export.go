package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/export"
	"github.com/perzonai/persona-engine/internal/models"
)

// ExportByQuery serves GET /personas/export/:format?ids=a,b,c.
func (h *Handler) ExportByQuery(c *gin.Context) {
	ids := strings.Split(c.Query("ids"), ",")
	ids = trimEmpty(ids)
	if len(ids) == 0 {
		fail(c, http.StatusBadRequest, "no persona IDs provided")
		return
	}
	h.export(c, ids, c.Param("format"))
}

// ExportByBody serves POST /export/personas.
func (h *Handler) ExportByBody(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	h.export(c, req.PersonaIDs, req.Format)
}

func (h *Handler) export(c *gin.Context, ids []string, format string) {
	personas := h.personas.GetMany(ids)
	if len(personas) == 0 {
		fail(c, http.StatusNotFound, "no personas found")
		return
	}

	var (
		body        []byte
		contentType string
		ext         string
		err         error
	)
	switch format {
	case "json":
		body, err = export.ToJSON(personas)
		contentType, ext = "application/json", "json"
	case "csv":
		body, err = export.ToCSV(personas)
		contentType, ext = "text/csv", "csv"
	case "pdf":
		body, err = export.ToPDF(personas)
		contentType, ext = "application/pdf", "pdf"
	default:
		fail(c, http.StatusBadRequest, "invalid export format")
		return
	}
	if err != nil {
		h.log.Error("export failed", zap.String("format", format), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to export personas")
		return
	}

	filename := fmt.Sprintf("personas_%d.%s", time.Now().Unix(), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentType, body)
}

func trimEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
