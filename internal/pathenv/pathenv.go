package pathenv

import (
	"fmt"
	"os"
	"strings"
)

// listSeparator is the platform's PATH segment delimiter.
const listSeparator = string(os.PathListSeparator)

// Update returns a copy of current with every segment exactly matching
// toRemove dropped and, when toAdd is non-empty, toAdd appended. The append
// is unconditional; keeping the variable free of duplicates is the caller's
// responsibility via a prior removal pass.
func Update(current []string, toRemove, toAdd string) []string {
	result := make([]string, 0, len(current)+1)

	for _, segment := range current {
		if toRemove != "" && segment == toRemove {
			continue
		}

		result = append(result, segment)
	}

	if toAdd != "" {
		result = append(result, toAdd)
	}

	return result
}

// Split breaks a PATH value into its segments, dropping empty ones.
func Split(value string) []string {
	parts := strings.Split(value, listSeparator)
	segments := make([]string, 0, len(parts))

	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}

	return segments
}

// Join assembles segments back into a PATH value.
func Join(segments []string) string {
	return strings.Join(segments, listSeparator)
}

// Store abstracts the persistent PATH variable so the environment write stays
// behind a thin, replaceable boundary.
type Store interface {
	// Load returns the current persistent PATH value.
	Load() (string, error)
	// Save writes the persistent PATH value back.
	Save(value string) error
}

// Manager applies PATH edits to both the persistent store and the current
// process environment.
type Manager struct {
	store Store

	// Seams for the process environment, replaceable in tests.
	getenv func(string) string
	setenv func(string, string) error
}

// NewManager creates a Manager persisting through the provided store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:  store,
		getenv: os.Getenv,
		setenv: os.Setenv,
	}
}

// RemoveEntry filters every segment matching dir out of the persistent PATH.
// Run before an installation, it guarantees stale entries never accumulate.
func (m *Manager) RemoveEntry(dir string) error {
	value, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("read persistent PATH: %w", err)
	}

	updated := Join(Update(Split(value), dir, ""))
	if updated == value {
		return nil
	}

	if err := m.store.Save(updated); err != nil {
		return fmt.Errorf("write persistent PATH: %w", err)
	}

	return nil
}

// AddEntry appends dir to the persistent PATH and to the current process's
// PATH for immediate effect within the running session.
func (m *Manager) AddEntry(dir string) error {
	value, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("read persistent PATH: %w", err)
	}

	if err := m.store.Save(Join(Update(Split(value), "", dir))); err != nil {
		return fmt.Errorf("write persistent PATH: %w", err)
	}

	processValue := Join(Update(Split(m.getenv("PATH")), "", dir))
	if err := m.setenv("PATH", processValue); err != nil {
		return fmt.Errorf("update process PATH: %w", err)
	}

	return nil
}
