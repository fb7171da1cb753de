package pathenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	blockStart = "# >>> veracode-installer >>>"
	blockEnd   = "# <<< veracode-installer <<<"

	profileFileMode os.FileMode = 0o644
)

var errUnterminatedBlock = errors.New("managed block start marker has no end marker")

// ProfileStore persists the PATH value as a managed block in a shell profile
// file. The block is rewritten in place on every save, so repeated installs
// never duplicate it.
type ProfileStore struct {
	path string

	// envFn resolves environment variables; replaceable in tests.
	envFn func(string) string
}

// NewProfileStore creates a store writing to the provided profile file.
func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{
		path:  path,
		envFn: os.Getenv,
	}
}

// DefaultProfilePath picks the profile file for the user's shell. Shells
// without a dedicated rc file fall back to ~/.profile.
func DefaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}

	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "" || shell == "." {
		shell = "bash"
	}

	switch shell {
	case "bash", "sh":
		path := filepath.Join(home, ".bashrc")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		return filepath.Join(home, ".bash_profile"), nil
	case "zsh":
		return filepath.Join(home, ".zshrc"), nil
	default:
		return filepath.Join(home, ".profile"), nil
	}
}

// Load returns the PATH value recorded in the managed block, falling back to
// the process environment when no block has been written yet.
func (s *ProfileStore) Load() (string, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.envFn("PATH"), nil
		}

		return "", fmt.Errorf("read profile: %w", err)
	}

	if value, ok := extractBlockValue(string(contents)); ok {
		return value, nil
	}

	return s.envFn("PATH"), nil
}

// Save rewrites the managed block with the provided PATH value.
func (s *ProfileStore) Save(value string) error {
	var existing []byte

	if data, err := os.ReadFile(s.path); err == nil {
		existing = data
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure profile dir: %w", err)
	}

	block := strings.Join([]string{
		blockStart,
		fmt.Sprintf("export PATH=%q", value),
		blockEnd,
	}, "\n")

	merged, err := mergeProfile(string(existing), block)
	if err != nil {
		return fmt.Errorf("merge profile %s: %w", s.path, err)
	}

	if err := os.WriteFile(s.path, []byte(merged), profileFileMode); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	return nil
}

// extractBlockValue pulls the PATH value out of an existing managed block.
func extractBlockValue(contents string) (string, bool) {
	inBlock := false

	for _, line := range strings.Split(contents, "\n") {
		trimmed := strings.TrimSpace(line)

		switch trimmed {
		case blockStart:
			inBlock = true
			continue
		case blockEnd:
			inBlock = false
			continue
		}

		if !inBlock {
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, "export PATH="); ok {
			if unquoted, err := strconv.Unquote(rest); err == nil {
				return unquoted, true
			}
		}
	}

	return "", false
}

// mergeProfile replaces any previous managed block and appends the new one.
func mergeProfile(existing, block string) (string, error) {
	removed, err := removeExistingBlock(existing)
	if err != nil {
		return "", err
	}

	cleaned := strings.TrimRight(removed, "\n")
	if strings.TrimSpace(cleaned) == "" {
		return block + "\n", nil
	}

	return cleaned + "\n\n" + block + "\n", nil
}

// removeExistingBlock drops the managed block from the profile text. A start
// marker whose end marker is missing leaves the block boundary unknown, so
// the rewrite is refused instead of dropping the rest of the file.
func removeExistingBlock(contents string) (string, error) {
	var builder strings.Builder

	skipping := false

	for _, line := range strings.Split(contents, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == blockStart {
			skipping = true
			continue
		}

		if trimmed == blockEnd {
			skipping = false
			continue
		}

		if skipping {
			continue
		}

		if line == "" && builder.Len() == 0 {
			continue
		}

		if builder.Len() > 0 {
			builder.WriteByte('\n')
		}

		builder.WriteString(line)
	}

	if skipping {
		return "", errUnterminatedBlock
	}

	return strings.Trim(builder.String(), "\n"), nil
}

// MemoryStore keeps the PATH value in memory. It backs tests and dry runs.
type MemoryStore struct {
	value string
}

// NewMemoryStore creates a MemoryStore seeded with the given value.
func NewMemoryStore(value string) *MemoryStore {
	return &MemoryStore{value: value}
}

// Load returns the stored value.
func (s *MemoryStore) Load() (string, error) {
	return s.value, nil
}

// Save replaces the stored value.
func (s *MemoryStore) Save(value string) error {
	s.value = value
	return nil
}
