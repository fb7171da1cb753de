package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veracode/cli-installer/internal/archive"
	"github.com/veracode/cli-installer/internal/config"
	"github.com/veracode/cli-installer/internal/download"
	"github.com/veracode/cli-installer/internal/logger"
	"github.com/veracode/cli-installer/internal/pathenv"
	"github.com/veracode/cli-installer/internal/platform"
	"github.com/veracode/cli-installer/internal/release"
)

const (
	// installDirName is the fixed final directory of the tool under the install root.
	installDirName = "veracode"

	// tempDirName is the transient extraction root, removed after relocation.
	tempDirName = "veracode-temp"

	// archiveGlob matches downloaded release archives left in the install root.
	archiveGlob = "veracode-cli_*.zip"

	zipExtension = ".zip"

	// supportContact is named in the generic failure message.
	supportContact = "support@veracode.com"

	installFailedMessage   = "Installation failed"
	uninstallFailedMessage = "Uninstall failed"

	loggerName = "veracode-installer"
)

// Options are inputs accepted by the installer entry points.
type Options struct {
	// ConfigPath is the optional path to a settings YAML file.
	ConfigPath string
	// Version is an explicit release version; empty means resolve the latest.
	Version string
	// Proxy overrides the settings-file proxy URL. Must use the http:// scheme.
	Proxy string
	// BaseURL overrides the settings-file release base URL.
	BaseURL string
	// InstallRoot overrides the settings-file install root directory.
	InstallRoot string
}

// runner holds the wiring and per-run state for a single installation.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	cfg             *config.Config
	resolver        *release.Client
	detector        *platform.Detector
	pathMgr         *pathenv.Manager
	explicitVersion string
}

// Run executes the installation and is the public entry point for the CLI.
// It is the single point of user-facing error reporting: any failing step
// aborts the sequence and already-completed steps are not rolled back.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, loggerName)

	profilePath, err := pathenv.DefaultProfilePath()
	if err != nil {
		return reportFailure(ctx, installFailedMessage, fmt.Errorf("locate shell profile: %w", err))
	}

	r, err := newRunner(opts, pathenv.NewProfileStore(profilePath))
	if err != nil {
		return reportFailure(ctx, installFailedMessage, err)
	}

	if err := r.run(ctx); err != nil {
		return reportFailure(ctx, installFailedMessage, err)
	}

	logger.Info(ctx, "Installation completed")
	logger.Infof(ctx, "The %s command is available on your PATH in new sessions", installDirName)

	return nil
}

// Uninstall removes the installation directory and its persistent PATH entry.
func Uninstall(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, loggerName)

	profilePath, err := pathenv.DefaultProfilePath()
	if err != nil {
		return reportFailure(ctx, uninstallFailedMessage, fmt.Errorf("locate shell profile: %w", err))
	}

	r, err := newRunner(opts, pathenv.NewProfileStore(profilePath))
	if err != nil {
		return reportFailure(ctx, uninstallFailedMessage, err)
	}

	if err := r.uninstall(ctx); err != nil {
		return reportFailure(ctx, uninstallFailedMessage, err)
	}

	logger.Info(ctx, "Uninstall completed")

	return nil
}

// reportFailure logs the generic failure message with the support contact and
// passes the error through unchanged.
func reportFailure(ctx context.Context, message string, err error) error {
	logger.ErrorKV(ctx, message, "error", err)
	logger.Infof(ctx, "Please contact %s if the problem persists", supportContact)

	return err
}

// newRunner loads settings, applies command-line overrides and builds the
// step dependencies. A malformed proxy URL fails here, before any network call.
func newRunner(opts *Options, store pathenv.Store) (*runner, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.Proxy != "" {
		cfg.Proxy = opts.Proxy
	}

	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	if opts.InstallRoot != "" {
		cfg.InstallRoot = opts.InstallRoot
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	resolver, err := release.NewClient(cfg.BaseURL, cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &runner{
		cfg:             cfg,
		resolver:        resolver,
		detector:        platform.NewDetector(),
		pathMgr:         pathenv.NewManager(store),
		explicitVersion: opts.Version,
	}, nil
}

// run walks the linear installation sequence. The first failing step aborts;
// there is no branching back and no rollback of completed steps.
func (r *runner) run(ctx context.Context) error {
	logger.Info(ctx, "Removing stale PATH entries")

	if err := r.pathMgr.RemoveEntry(r.installDir()); err != nil {
		return fmt.Errorf("remove stale PATH entry: %w", err)
	}

	releaseVersion, err := r.resolver.ResolveVersion(ctx, r.explicitVersion)
	if err != nil {
		return fmt.Errorf("resolve release version: %w", err)
	}

	logger.InfoKV(ctx, "Installing release", "version", releaseVersion)

	artifactName, err := r.detector.ArtifactName(releaseVersion)
	if err != nil {
		return fmt.Errorf("detect architecture: %w", err)
	}

	archivePath, err := r.downloadArtifact(ctx, artifactName)
	if err != nil {
		return err
	}

	tempRoot := filepath.Join(r.cfg.InstallRoot, tempDirName)

	logger.InfoKV(ctx, "Extracting archive", "path", archivePath)

	if err := archive.ExtractZip(archivePath, tempRoot); err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}

	logger.Info(ctx, "Stopping running tool processes")

	if err := terminateToolProcesses(ctx); err != nil {
		return fmt.Errorf("stop running tool processes: %w", err)
	}

	logger.InfoKV(ctx, "Installing into place", "dir", r.installDir())

	if err := r.relocate(tempRoot, artifactName); err != nil {
		return err
	}

	if err := r.cleanupArchives(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Registering installation on PATH")

	if err := r.pathMgr.AddEntry(r.installDir()); err != nil {
		return fmt.Errorf("add PATH entry: %w", err)
	}

	return nil
}

// downloadArtifact verifies the artifact exists and fetches it into the
// install root, reporting progress once per second.
func (r *runner) downloadArtifact(ctx context.Context, artifactName string) (string, error) {
	if err := os.MkdirAll(r.cfg.InstallRoot, 0o755); err != nil {
		return "", fmt.Errorf("prepare install root: %w", err)
	}

	artifactURL := r.resolver.ArtifactURL(artifactName)
	archivePath := filepath.Join(r.cfg.InstallRoot, artifactName)

	logger.InfoKV(ctx, "Downloading artifact", "url", artifactURL)

	d := download.NewDownloader(r.resolver.DownloadClient(),
		download.WithProgressFunc(func(received, total int64) {
			if total > 0 {
				logger.Infof(ctx, "Downloading... %d%%", received*100/total)
			} else {
				logger.Infof(ctx, "Downloading... %d bytes", received)
			}
		}))

	if err := d.Fetch(ctx, artifactURL, archivePath); err != nil {
		return "", fmt.Errorf("download artifact: %w", err)
	}

	return archivePath, nil
}

// relocate moves the extracted folder into the final installation directory,
// replacing any prior installation, and removes the temporary extraction root.
func (r *runner) relocate(tempRoot, artifactName string) error {
	extracted := filepath.Join(tempRoot, strings.TrimSuffix(artifactName, zipExtension))

	if _, err := os.Stat(extracted); err != nil {
		return fmt.Errorf("extracted folder missing: %w", err)
	}

	installDir := r.installDir()

	if err := os.RemoveAll(installDir); err != nil {
		return fmt.Errorf("remove previous installation: %w", err)
	}

	if err := os.Rename(extracted, installDir); err != nil {
		return fmt.Errorf("move installation into place: %w", err)
	}

	if err := os.RemoveAll(tempRoot); err != nil {
		return fmt.Errorf("remove extraction root: %w", err)
	}

	return nil
}

// cleanupArchives deletes downloaded release archives left in the install root.
func (r *runner) cleanupArchives(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(r.cfg.InstallRoot, archiveGlob))
	if err != nil {
		return fmt.Errorf("scan leftover archives: %w", err)
	}

	for _, match := range matches {
		logger.DebugKV(ctx, "Removing leftover archive", "path", match)

		if err := os.Remove(match); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove leftover archive %s: %w", match, err)
		}
	}

	return nil
}

// uninstall removes the installation directory and filters its PATH entry.
func (r *runner) uninstall(ctx context.Context) error {
	logger.Info(ctx, "Stopping running tool processes")

	if err := terminateToolProcesses(ctx); err != nil {
		return fmt.Errorf("stop running tool processes: %w", err)
	}

	installDir := r.installDir()

	logger.InfoKV(ctx, "Removing installation", "dir", installDir)

	if err := os.RemoveAll(installDir); err != nil {
		return fmt.Errorf("remove installation: %w", err)
	}

	if err := r.pathMgr.RemoveEntry(installDir); err != nil {
		return fmt.Errorf("remove PATH entry: %w", err)
	}

	return nil
}

func (r *runner) installDir() string {
	return filepath.Join(r.cfg.InstallRoot, installDirName)
}
