package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EntryFunc handles one extracted regular file. The path is only valid for
// the duration of the call; the scratch directory is removed afterwards.
type EntryFunc func(ctx context.Context, path string) error

// Expand extracts the zip at archivePath into a fresh scratch directory,
// invokes handle for every extracted regular file, and removes the scratch
// directory before returning, whether or not anything failed.
func Expand(ctx context.Context, archivePath string, handle EntryFunc) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	scratch, err := os.MkdirTemp("", "shuttle-archive-*")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractEntry(entry, scratch); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}

	return filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return handle(ctx, path)
	})
}

func extractEntry(entry *zip.File, scratch string) error {
	target, err := safeJoin(scratch, entry.Name)
	if err != nil {
		return err
	}
	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin resolves an archive entry name under root and rejects names that
// would escape it.
func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("entry path escapes archive root: %s", name)
	}
	return filepath.Join(root, cleaned), nil
}
