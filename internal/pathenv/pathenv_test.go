package pathenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestUpdate exercises the pure PATH edit: removal, append, and both at once.
func TestUpdate(t *testing.T) {
	t.Parallel()

	current := []string{"/usr/bin", "/opt/veracode", "/usr/local/bin"}

	got := Update(current, "/opt/veracode", "")
	require.Equal(t, []string{"/usr/bin", "/usr/local/bin"}, got)

	got = Update(current, "", "/opt/new")
	require.Equal(t, []string{"/usr/bin", "/opt/veracode", "/usr/local/bin", "/opt/new"}, got)

	got = Update(current, "/opt/veracode", "/opt/veracode")
	require.Equal(t, []string{"/usr/bin", "/usr/local/bin", "/opt/veracode"}, got)

	// The input slice is never mutated.
	require.Equal(t, []string{"/usr/bin", "/opt/veracode", "/usr/local/bin"}, current)
}

// TestSplitJoin verifies the delimiter handling roundtrip.
func TestSplitJoin(t *testing.T) {
	t.Parallel()

	value := Join([]string{"/a", "/b"})
	require.Equal(t, "/a"+string(os.PathListSeparator)+"/b", value)
	require.Equal(t, []string{"/a", "/b"}, Split(value))

	// Empty segments are dropped.
	require.Equal(t, []string{"/a"}, Split(value[:len(value)-2]))
}

// TestManagerRemoveThenAdd checks the stale-removal plus unconditional-append contract.
func TestManagerRemoveThenAdd(t *testing.T) {
	t.Parallel()

	installDir := "/opt/data/veracode"
	store := NewMemoryStore(Join([]string{"/usr/bin", installDir}))

	m := NewManager(store)
	m.getenv = func(string) string { return "/usr/bin" }
	m.setenv = func(string, string) error { return nil }

	require.NoError(t, m.RemoveEntry(installDir))

	value, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "/usr/bin", value)

	require.NoError(t, m.AddEntry(installDir))

	value, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(value, installDir))
	require.True(t, strings.HasSuffix(value, installDir))
}

// TestManagerAddUpdatesProcessPath ensures the running session sees the new entry immediately.
func TestManagerAddUpdatesProcessPath(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("/usr/bin")
	m := NewManager(store)

	var setValue string

	m.getenv = func(string) string { return "/usr/bin" }
	m.setenv = func(_, value string) error {
		setValue = value
		return nil
	}

	require.NoError(t, m.AddEntry("/opt/data/veracode"))
	require.Equal(t, Join([]string{"/usr/bin", "/opt/data/veracode"}), setValue)
}

// TestProfileStoreRoundtrip verifies the managed block is written and read back.
func TestProfileStoreRoundtrip(t *testing.T) {
	t.Parallel()

	profile := filepath.Join(t.TempDir(), ".bashrc")
	require.NoError(t, os.WriteFile(profile, []byte("alias ll='ls -l'\n"), 0o644))

	store := NewProfileStore(profile)

	require.NoError(t, store.Save("/usr/bin:/opt/data/veracode"))

	value, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "/usr/bin:/opt/data/veracode", value)

	// Saving again replaces the block instead of stacking a second one.
	require.NoError(t, store.Save("/usr/bin"))

	contents, err := os.ReadFile(profile)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(contents), blockStart))
	require.Contains(t, string(contents), "alias ll='ls -l'")
}

// TestProfileStoreRefusesDamagedBlock ensures a profile whose end marker was
// lost is left untouched instead of losing every line after the start marker.
func TestProfileStoreRefusesDamagedBlock(t *testing.T) {
	t.Parallel()

	damaged := strings.Join([]string{
		"alias ll='ls -l'",
		blockStart,
		`export PATH="/usr/bin"`,
		"",
		"# user content after the lost end marker",
		"",
	}, "\n")

	profile := filepath.Join(t.TempDir(), ".bashrc")
	require.NoError(t, os.WriteFile(profile, []byte(damaged), 0o644))

	store := NewProfileStore(profile)
	require.ErrorIs(t, store.Save("/usr/bin:/opt/data/veracode"), errUnterminatedBlock)

	contents, err := os.ReadFile(profile)
	require.NoError(t, err)
	require.Equal(t, damaged, string(contents))
}

// TestDefaultProfilePathFallsBackToProfile covers shells without a dedicated rc file.
func TestDefaultProfilePathFallsBackToProfile(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/fish")

	path, err := DefaultProfilePath()
	require.NoError(t, err)
	require.Equal(t, ".profile", filepath.Base(path))
}

// TestProfileStoreLoadFallsBackToEnv ensures a missing block yields the process PATH.
func TestProfileStoreLoadFallsBackToEnv(t *testing.T) {
	t.Parallel()

	store := NewProfileStore(filepath.Join(t.TempDir(), ".bashrc"))
	store.envFn = func(string) string { return "/fallback/bin" }

	value, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "/fallback/bin", value)
}
