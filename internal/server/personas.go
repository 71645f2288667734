package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/ingest"
	"github.com/perzonai/persona-engine/internal/models"
)

// Generate validates the market context, folds any uploaded files into
// the survey text, and runs the generation pipeline. Accepts JSON or
// multipart form (fields plus a "files" part).
func (h *Handler) Generate(c *gin.Context) {
	var req models.GenerateRequest

	isMultipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	if isMultipart {
		if err := c.ShouldBind(&req); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		files, err := h.processAttachedFiles(c)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if len(files) > 0 {
			req.SurveyData += ingest.Insights(files)
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	personas, degraded := h.gateway.GeneratePersonas(c.Request.Context(), req)
	h.personas.Put(personas)

	h.log.Info("generated personas",
		zap.Int("count", len(personas)),
		zap.String("industry", req.Industry),
		zap.Bool("degraded", degraded),
	)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"personas":    personas,
		"sessionId":   models.NewSessionID(),
		"generatedAt": time.Now().UTC(),
		"degraded":    degraded,
	})
}

func (h *Handler) processAttachedFiles(c *gin.Context) ([]models.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	var files []models.UploadedFile
	for _, fh := range form.File["files"] {
		if fh.Size > h.cfg.MaxUploadSize {
			return nil, errFileTooLarge
		}
		mimeType := fh.Header.Get("Content-Type")
		if !ingest.Allowed(mimeType) {
			return nil, errBadFileType
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		processed, err := ingest.Process(fh.Filename, mimeType, content, h.cfg.MaxUploadSize)
		if err != nil {
			return nil, err
		}
		files = append(files, processed)
	}
	return files, nil
}

// Refine looks up the referenced personas, runs the refinement
// pipeline, and writes the adjusted records back.
func (h *Handler) Refine(c *gin.Context) {
	var req models.RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	existing := h.personas.GetMany(req.PersonaIDs)
	if len(existing) == 0 {
		fail(c, http.StatusNotFound, "no personas found with the provided IDs")
		return
	}

	refined, degraded := h.gateway.RefinePersonas(c.Request.Context(), existing, req.Refinements, req.OriginalContext)
	h.personas.Put(refined)

	h.log.Info("refined personas", zap.Int("count", len(refined)), zap.Bool("degraded", degraded))

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"personas":  refined,
		"refinedAt": time.Now().UTC(),
		"degraded":  degraded,
	})
}

// Chat answers one message in the persona's voice. Unknown personas are
// rejected before any model work.
func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	persona, ok := h.personas.Get(req.PersonaID)
	if !ok {
		fail(c, http.StatusNotFound, "persona not found")
		return
	}

	history := req.History
	if len(history) == 0 {
		history = h.conversations.Get(req.PersonaID)
	}

	reply, degraded := h.gateway.ChatReply(c.Request.Context(), persona, req.Message, history)

	now := time.Now().UTC()
	h.conversations.Append(req.PersonaID,
		models.ConversationTurn{Role: models.RoleUser, Content: req.Message, Timestamp: now},
		models.ConversationTurn{Role: models.RoleAssistant, Content: reply, Timestamp: now},
	)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"response":  reply,
		"timestamp": now,
		"degraded":  degraded,
	})
}

func (h *Handler) ListPersonas(c *gin.Context) {
	personas := h.personas.GetAll()
	c.JSON(http.StatusOK, gin.H{"success": true, "personas": personas, "total": len(personas)})
}

func (h *Handler) SearchPersonas(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		fail(c, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	results := h.personas.Search(q)
	if results == nil {
		results = []models.Persona{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "personas": results, "total": len(results)})
}

func (h *Handler) PersonaStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": h.personas.Stats()})
}

// DeletePersona removes the persona and cascades to its conversation
// log. Share links stay as-is; resolution tolerates missing personas.
func (h *Handler) DeletePersona(c *gin.Context) {
	id := c.Param("id")
	if !h.personas.Delete(id) {
		fail(c, http.StatusNotFound, "persona not found")
		return
	}
	h.conversations.Delete(id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
