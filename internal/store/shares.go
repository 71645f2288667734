package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/errs"
	"github.com/perzonai/persona-engine/internal/models"
)

// ShareRegistry manages expiring, optionally password-gated share
// links. Expired links are deleted lazily on first access and cannot be
// resurrected.
type ShareRegistry struct {
	mu         sync.Mutex
	links      map[string]models.ShareableLink
	defaultTTL time.Duration
	log        *zap.Logger

	now func() time.Time // overridable in tests
}

func NewShareRegistry(defaultTTL time.Duration, log *zap.Logger) *ShareRegistry {
	return &ShareRegistry{
		links:      make(map[string]models.ShareableLink),
		defaultTTL: defaultTTL,
		log:        log,
		now:        time.Now,
	}
}

// Create registers a link over the given persona ids. A zero ttl uses
// the registry default.
func (r *ShareRegistry) Create(personaIDs []string, ttl time.Duration, isPublic bool, password string) models.ShareableLink {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	now := r.now().UTC()
	link := models.ShareableLink{
		ID:         models.NewShareID(),
		PersonaIDs: append([]string(nil), personaIDs...),
		ExpiresAt:  now.Add(ttl),
		IsPublic:   isPublic,
		Password:   password,
		CreatedAt:  now,
	}

	r.mu.Lock()
	r.links[link.ID] = link
	r.mu.Unlock()

	r.log.Info("created share link", zap.String("shareId", link.ID), zap.Int("personas", len(personaIDs)))
	return link
}

// Resolve returns the link after the access checks pass, incrementing
// its access counter. Errors map to the HTTP taxonomy: ErrNotFound
// (unknown id), ErrExpired (past expiry; the link is deleted),
// ErrUnauthorized (password mismatch, distinct so clients can
// re-prompt).
func (r *ShareRegistry) Resolve(id, password string) (models.ShareableLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return models.ShareableLink{}, errs.ErrNotFound
	}

	now := r.now().UTC()
	if !now.Before(link.ExpiresAt) {
		delete(r.links, id)
		return models.ShareableLink{}, errs.ErrExpired
	}

	if link.Password != "" && link.Password != password {
		return models.ShareableLink{}, errs.ErrUnauthorized
	}

	link.AccessCount++
	link.LastAccessed = &now
	r.links[id] = link
	return link, nil
}
