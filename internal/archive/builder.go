package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/snapit/lambdapack/internal/logfields"
	"github.com/snapit/lambdapack/internal/rules"
)

// Builder writes files into one zip archive. All entries are deflate
// compressed and use forward-slash internal names. A Builder owns exactly one
// open archive; the archive is not valid until Close succeeds.
type Builder struct {
	path    string
	absPath string
	file    *os.File
	zw      *zip.Writer
	seen    map[string]struct{}
}

// Create opens a new archive at path in overwrite mode.
func Create(path string) (*Builder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArchiveCreateFailed, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Builder{
		path:    path,
		absPath: filepath.Clean(abs),
		file:    f,
		zw:      zip.NewWriter(f),
		seen:    make(map[string]struct{}),
	}, nil
}

// Path returns the archive's output path.
func (b *Builder) Path() string { return b.path }

// Entries returns the number of entries written so far.
func (b *Builder) Entries() int { return len(b.seen) }

// SetComment sets the zip end-of-archive comment. Must be called before any
// entry is finalized by Close.
func (b *Builder) SetComment(comment string) error {
	return b.zw.SetComment(comment)
}

// AddFile writes one source file into the archive under arcName.
// A source file is added at most once per run; repeated adds are no-ops.
// The archive's own output file is never added.
func (b *Builder) AddFile(srcPath, arcName string) error {
	if b.isSelf(srcPath) {
		return nil
	}

	arcName = filepath.ToSlash(arcName)
	if _, dup := b.seen[arcName]; dup {
		return nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSourceReadFailed, srcPath, err)
	}
	defer func() {
		_ = src.Close()
	}()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSourceReadFailed, srcPath, err)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEntryWriteFailed, arcName, err)
	}
	hdr.Name = arcName
	hdr.Method = zip.Deflate

	w, err := b.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEntryWriteFailed, arcName, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEntryWriteFailed, arcName, err)
	}

	b.seen[arcName] = struct{}{}
	slog.Debug("Archive entry written", logfields.File(arcName), logfields.Archive(b.path))
	return nil
}

// AddTree walks root top-down and writes every file the policy admits.
// Excluded directories are pruned before descent, so their contents are never
// visited or read. Internal names are computed relative to base; base equal
// to root yields root-relative names, while a base above root keeps the
// intermediate directories (the dependency-tree case) in the entry names.
func (b *Builder) AddTree(root, base string, policy *rules.Policy) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if policy.ExcludeDir(filepath.ToSlash(rel), d.Name()) {
				slog.Debug("Pruned directory", logfields.Path(rel), logfields.Archive(b.path))
				return fs.SkipDir
			}
			return nil
		}

		if b.isSelf(path) {
			return nil
		}

		relDir := filepath.ToSlash(filepath.Dir(rel))
		if relDir == "." {
			relDir = ""
		}
		if policy.ExcludeFile(relDir, d.Name()) {
			return nil
		}

		arcRel, rerr := filepath.Rel(base, path)
		if rerr != nil {
			return rerr
		}
		return b.AddFile(path, arcRel)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTreeWalkFailed, root, err)
	}
	return nil
}

// Close finalizes the archive. The zip central directory is only written
// here; a builder that is never closed leaves an invalid archive behind.
func (b *Builder) Close() error {
	zerr := b.zw.Close()
	ferr := b.file.Close()
	if zerr != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveCloseFailed, b.path, zerr)
	}
	if ferr != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveCloseFailed, b.path, ferr)
	}
	return nil
}

// isSelf reports whether srcPath refers to the archive's own output file.
func (b *Builder) isSelf(srcPath string) bool {
	abs, err := filepath.Abs(srcPath)
	if err != nil {
		return false
	}
	return filepath.Clean(abs) == b.absPath
}
