// Package store holds the in-memory authoritative state: personas,
// share links, and conversation logs. Each store is constructed once at
// startup and injected; maps are RWMutex-protected because the HTTP
// layer serves requests concurrently.
package store

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/models"
)

// PersonaStore is the single-process source of truth for personas.
type PersonaStore struct {
	mu       sync.RWMutex
	personas map[string]models.Persona
	log      *zap.Logger
}

func NewPersonaStore(log *zap.Logger) *PersonaStore {
	return &PersonaStore{
		personas: make(map[string]models.Persona),
		log:      log,
	}
}

// Put inserts or replaces personas by identifier.
func (s *PersonaStore) Put(personas []models.Persona) {
	s.mu.Lock()
	for _, p := range personas {
		s.personas[p.ID] = p
	}
	s.mu.Unlock()
	s.log.Info("stored personas", zap.Int("count", len(personas)))
}

// Get returns the persona and whether it exists.
func (s *PersonaStore) Get(id string) (models.Persona, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.personas[id]
	return p, ok
}

// GetMany returns the personas for the known ids, silently dropping
// unknown ones. Order follows the input ids.
func (s *PersonaStore) GetMany(ids []string) []models.Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Persona, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.personas[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// GetAll returns every stored persona.
func (s *PersonaStore) GetAll() []models.Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Persona, 0, len(s.personas))
	for _, p := range s.personas {
		out = append(out, p)
	}
	return out
}

// Update applies mutate under the store lock and refreshes UpdatedAt.
// Returns the updated persona, or ok=false when the id is unknown.
func (s *PersonaStore) Update(id string, mutate func(p *models.Persona)) (models.Persona, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personas[id]
	if !ok {
		return models.Persona{}, false
	}
	mutate(&p)
	p.ID = id
	p.UpdatedAt = time.Now().UTC()
	s.personas[id] = p
	return p, true
}

// Delete removes the persona and reports whether it existed.
func (s *PersonaStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.personas[id]
	delete(s.personas, id)
	return ok
}

// Search matches a case-insensitive substring against name, occupation,
// traits, and pain points.
func (s *PersonaStore) Search(query string) []models.Persona {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Persona
	for _, p := range s.personas {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matchesQuery(p models.Persona, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Demographics.Occupation), q) {
		return true
	}
	for _, t := range p.Traits {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, pp := range p.PainPoints {
		if strings.Contains(strings.ToLower(pp), q) {
			return true
		}
	}
	return false
}

// Stats are the aggregate counters surfaced on the dashboard.
type Stats struct {
	TotalPersonas       int     `json:"totalPersonas"`
	DistinctOccupations int     `json:"distinctOccupations"`
	AverageAge          float64 `json:"averageAge"`
	CreatedToday        int     `json:"createdToday"`
}

// Stats computes aggregate statistics over the full store.
func (s *PersonaStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{TotalPersonas: len(s.personas)}
	if st.TotalPersonas == 0 {
		return st
	}

	occupations := make(map[string]struct{})
	ageSum := 0
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, p := range s.personas {
		occupations[p.Demographics.Occupation] = struct{}{}
		ageSum += p.Demographics.Age
		if !p.CreatedAt.UTC().Truncate(24 * time.Hour).Before(today) {
			st.CreatedToday++
		}
	}
	st.DistinctOccupations = len(occupations)
	st.AverageAge = float64(ageSum) / float64(st.TotalPersonas)
	return st
}
