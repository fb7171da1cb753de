package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// defaultDirMode is used for directories created during extraction when the
// archive does not carry a usable mode.
const defaultDirMode os.FileMode = 0o755

// ExtractZip expands the archive at archivePath into destDir, creating the
// directory if needed and overwriting any existing contents.
func ExtractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	if err := os.MkdirAll(destDir, defaultDirMode); err != nil {
		return fmt.Errorf("prepare extraction dir: %w", err)
	}

	for _, entry := range reader.File {
		if err := extractEntry(entry, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(entry.Name))
	if err := ensureWithinRoot(destDir, target); err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(target, defaultDirMode); err != nil {
			return fmt.Errorf("mkdir %s: %w", target, err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return fmt.Errorf("mkdir for file %s: %w", target, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}

	defer func() {
		_ = src.Close()
	}()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, entry.Mode())
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()

		return fmt.Errorf("extract file %s: %w", target, err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("finalize file %s: %w", target, err)
	}

	return nil
}

// ensureWithinRoot rejects archive entries whose path escapes the extraction root.
func ensureWithinRoot(root, target string) error {
	root = filepath.Clean(root)
	target = filepath.Clean(target)

	if target == root {
		return nil
	}

	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return fmt.Errorf("illegal archive path %s", target)
	}

	return nil
}
