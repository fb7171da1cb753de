package platform

import (
	"errors"
	"fmt"
	"strconv"
)

// artifactTemplate is the fixed naming scheme for release archives:
// version first, then the architecture tag.
const artifactTemplate = "veracode-cli_%s_windows_%s.zip"

// Architecture tags used in artifact filenames. Historical quirk of the
// release pipeline: 64-bit builds are tagged "x86", 32-bit builds "386".
const (
	tag64Bit = "x86"
	tag32Bit = "386"
)

// ErrUnsupportedArchitecture is returned when the host is neither 32- nor 64-bit.
var ErrUnsupportedArchitecture = errors.New("unsupported architecture")

// Detector maps host bitness to a release artifact filename.
type Detector struct {
	// bits reports the host pointer width; replaceable in tests.
	bits func() int
}

// NewDetector creates a Detector bound to the running host.
func NewDetector() *Detector {
	return &Detector{
		bits: func() int { return strconv.IntSize },
	}
}

// ArtifactName returns the archive filename for the given release version on
// this host. Unsupported architectures are a terminal condition: there is no
// fallback artifact.
func (d *Detector) ArtifactName(releaseVersion string) (string, error) {
	switch d.bits() {
	case 64:
		return fmt.Sprintf(artifactTemplate, releaseVersion, tag64Bit), nil
	case 32:
		return fmt.Sprintf(artifactTemplate, releaseVersion, tag32Bit), nil
	default:
		return "", fmt.Errorf("%w: %d-bit host", ErrUnsupportedArchitecture, d.bits())
	}
}
