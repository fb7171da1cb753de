package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestArtifactName verifies bitness to artifact filename mapping.
func TestArtifactName(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	d.bits = func() int { return 64 }

	name, err := d.ArtifactName("2.0.0")
	require.NoError(t, err)
	require.Equal(t, "veracode-cli_2.0.0_windows_x86.zip", name)

	d.bits = func() int { return 32 }

	name, err = d.ArtifactName("2.0.0")
	require.NoError(t, err)
	require.Equal(t, "veracode-cli_2.0.0_windows_386.zip", name)
}

// TestArtifactNameUnsupported ensures unknown bitness is a terminal error.
func TestArtifactNameUnsupported(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	d.bits = func() int { return 16 }

	_, err := d.ArtifactName("2.0.0")
	require.ErrorIs(t, err, ErrUnsupportedArchitecture)
}

// TestNewDetectorUsesHostBitness ensures the default detector resolves to a supported width.
func TestNewDetectorUsesHostBitness(t *testing.T) {
	t.Parallel()

	_, err := NewDetector().ArtifactName("1.0.0")
	require.NoError(t, err)
}
