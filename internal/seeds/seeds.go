// Package seeds loads the narrative seed file that drives discovery: which
// narratives exist, their search terms and their matching rules.
package seeds

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"NarrativeRadar/internal/domain/models"
)

type seedFile struct {
	Narratives []seedEntry `json:"narratives"`
}

type seedEntry struct {
	Name            string   `json:"name"`
	Terms           []string `json:"terms"`
	AllowNameMatch  *bool    `json:"allowNameMatch"`
	Block           []string `json:"block"`
	RequireAllTerms bool     `json:"requireAllTerms"`
	Cap             int      `json:"cap"`
}

// Store holds the loaded narratives. It caches the parsed file; Reload
// re-reads from disk.
type Store struct {
	mu         sync.RWMutex
	path       string
	narratives []models.Narrative
}

// Load reads and normalizes the seed file at path. Entries with an empty
// name are skipped; allowNameMatch defaults to true when absent.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the seed file from disk, replacing the cached set only on
// success.
func (s *Store) Reload() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read seeds: %w", err)
	}

	var f seedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse seeds: %w", err)
	}

	narratives := make([]models.Narrative, 0, len(f.Narratives))
	for _, e := range f.Narratives {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		allow := true
		if e.AllowNameMatch != nil {
			allow = *e.AllowNameMatch
		}
		narratives = append(narratives, models.Narrative{
			Name:            name,
			Terms:           append([]string(nil), e.Terms...),
			AllowNameMatch:  allow,
			Block:           append([]string(nil), e.Block...),
			RequireAllTerms: e.RequireAllTerms,
			Cap:             e.Cap,
		})
	}

	s.mu.Lock()
	s.narratives = narratives
	s.mu.Unlock()
	return nil
}

// All returns the loaded narratives in file order.
func (s *Store) All() []models.Narrative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Narrative(nil), s.narratives...)
}

// Names returns the narrative names in file order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.narratives))
	for _, n := range s.narratives {
		names = append(names, n.Name)
	}
	return names
}

// Get returns the narrative with the given name.
func (s *Store) Get(name string) (models.Narrative, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.narratives {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
	}
	return models.Narrative{}, false
}
