package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/perzonai/persona-engine/internal/errs"
	"github.com/perzonai/persona-engine/internal/models"
)

// CreateShare registers a share link over existing personas. Expiry
// comes from the absolute ExpiresAt when set, otherwise ExpiresIn in
// hours; zero takes the server default.
func (h *Handler) CreateShare(c *gin.Context) {
	var req models.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	known := h.personas.GetMany(req.PersonaIDs)
	if len(known) == 0 {
		fail(c, http.StatusNotFound, "no personas found with the provided IDs")
		return
	}

	ttl := time.Duration(req.Settings.ExpiresIn) * time.Hour
	if !req.Settings.ExpiresAt.IsZero() {
		ttl = time.Until(req.Settings.ExpiresAt)
		if ttl <= 0 {
			fail(c, http.StatusBadRequest, "expiresAt must be in the future")
			return
		}
	}
	link := h.shares.Create(req.PersonaIDs, ttl, req.Settings.PublicAccess, req.Settings.Password)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"shareId":   link.ID,
		"shareUrl":  fmt.Sprintf("%s/shared/%s", h.cfg.BaseURL, link.ID),
		"expiresAt": link.ExpiresAt,
	})
}

// ResolveShare returns the shared personas after expiry and password
// checks. Personas deleted since sharing are silently absent.
func (h *Handler) ResolveShare(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		fail(c, http.StatusBadRequest, "share ID required")
		return
	}

	link, err := h.shares.Resolve(id, c.Query("password"))
	switch {
	case errors.Is(err, errs.ErrNotFound):
		fail(c, http.StatusNotFound, "share not found")
		return
	case errors.Is(err, errs.ErrExpired):
		fail(c, http.StatusGone, "share link has expired")
		return
	case errors.Is(err, errs.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, "invalid password")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, "failed to resolve share")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"personas": h.personas.GetMany(link.PersonaIDs),
		"metadata": gin.H{
			"createdAt":   link.CreatedAt,
			"expiresAt":   link.ExpiresAt,
			"accessCount": link.AccessCount,
		},
	})
}
