// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/degit/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrExtract matches every ExtractError
var ErrExtract = errors.Base("extraction failed")

// ExtractError reports a malformed archive or a failed write. Files written
// before the failure are left in place.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("extraction failed at %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

func (e *ExtractError) Is(target error) bool { return target == ErrExtract }

// Options controls which entries are written and how progress is shown
type Options struct {
	Subdir   string          // only entries below this directory, re-rooted
	Exclude  []string        // doublestar patterns matched against final paths
	Progress status.Reporter // receives the compressed bytes and entry names
}

// Result summarizes a finished extraction
type Result struct {
	Files   int
	Dirs    int
	Written []string
	Skipped []string // entries of a type that is never written, like hard links
}

// 🗜️ Extract streams a gzip compressed tarball from r into dest. The archive's
// top level directory is dropped from every path.
func Extract(ctx context.Context, r io.Reader, dest string, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	progress := opts.Progress
	if progress == nil {
		progress = status.Noop()
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, &ExtractError{Err: errors.Errorf("creating destination: %w", err)}
	}

	// every write is checked against the real location of dest
	root, err := filepath.Abs(dest)
	if err == nil {
		root, err = filepath.EvalSymlinks(root)
	}
	if err != nil {
		return nil, &ExtractError{Err: errors.Errorf("resolving destination: %w", err)}
	}

	tr, err := NewReader(io.TeeReader(r, progress))
	if err != nil {
		return nil, &ExtractError{Err: err}
	}
	defer tr.Close()

	result := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return result, &ExtractError{Err: errors.Errorf("extraction interrupted: %w", err)}
		}

		entry, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, &ExtractError{Err: err}
		}

		rel, ok := Rewrite(entry.Path, opts.Subdir)
		if !ok {
			continue
		}
		if excluded(rel, opts.Exclude) {
			logger.Trace().Str("path", rel).Msg("excluded")
			continue
		}

		written, err := writeEntry(root, rel, entry)
		if err != nil {
			return result, &ExtractError{Path: rel, Err: err}
		}
		if !written {
			logger.Debug().Str("path", rel).Stringer("type", entry.Type).Msg("skipping unsupported entry")
			result.Skipped = append(result.Skipped, rel)
			continue
		}

		if entry.Type == TypeDir {
			result.Dirs++
		} else {
			result.Files++
		}
		result.Written = append(result.Written, rel)

		logger.Trace().Str("path", rel).Stringer("type", entry.Type).Msg("wrote entry")
		progress.Describe(status.FormatEntry(rel, entry.Type == TypeDir))
	}

	logger.Debug().Int("files", result.Files).Int("dirs", result.Dirs).Msg("extraction complete")

	if err := progress.Finish(status.FormatSummary(result.Files, result.Dirs)); err != nil {
		logger.Debug().Err(err).Msg("finishing progress")
	}

	return result, nil
}

// Rewrite maps an archive path to its destination path by dropping the top
// level directory and, when subdir is set, keeping only paths below subdir
// with that prefix removed. It returns false for paths that are not written.
func Rewrite(name, subdir string) (string, bool) {
	name = strings.Trim(strings.TrimPrefix(name, "./"), "/")

	_, rest, found := strings.Cut(name, "/")
	if !found || rest == "" {
		return "", false
	}

	subdir = strings.Trim(subdir, "/")
	if subdir == "" {
		return rest, true
	}

	rest, ok := strings.CutPrefix(rest, subdir+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

func excluded(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	// a match on any parent directory excludes everything below it
	for p := rel; p != "." && p != ""; p = path.Dir(p) {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, p); ok {
				return true
			}
		}
	}
	return false
}

var errEscape = errors.Base("path escapes destination")

// resolveInside maps rel to its real location below root. Components that
// already exist on disk are followed through any symlinks, and the walk fails
// as soon as one of them leads outside root. Missing components are appended
// as is since they will be created as plain directories.
func resolveInside(root, rel string) (string, error) {
	cur := root
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	for i, part := range parts {
		if part == "." {
			continue
		}

		next := filepath.Join(cur, part)
		info, err := os.Lstat(next)
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.Join(append([]string{cur}, parts[i:]...)...), nil
		}
		if err != nil {
			return "", errors.Errorf("inspecting %s: %w", next, err)
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			next, err = filepath.EvalSymlinks(next)
			if err != nil {
				return "", errors.Errorf("%w: unresolvable symlink %s", errEscape, part)
			}
			if !within(root, next) {
				return "", errors.Errorf("%w: %s links outside", errEscape, part)
			}
		}
		cur = next
	}
	return cur, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && filepath.IsLocal(rel)
}

func writeEntry(root, rel string, entry *Entry) (bool, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return false, errEscape
	}

	switch entry.Type {
	case TypeDir:
		target, err := resolveInside(root, local)
		if err != nil {
			return false, err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return false, errors.Errorf("creating directory: %w", err)
		}
		return true, nil

	case TypeFile:
		target, err := resolveInside(root, local)
		if err != nil {
			return false, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return false, errors.Errorf("creating parent directory: %w", err)
		}

		perm := entry.Mode.Perm()
		if perm == 0 {
			perm = 0o644
		}

		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
		if err != nil {
			return false, errors.Errorf("creating file: %w", err)
		}
		if _, err := io.Copy(f, entry); err != nil {
			f.Close()
			return false, errors.Errorf("writing file: %w", err)
		}
		if err := f.Close(); err != nil {
			return false, errors.Errorf("closing file: %w", err)
		}
		return true, nil

	case TypeSymlink:
		parent, err := resolveInside(root, filepath.Dir(local))
		if err != nil {
			return false, err
		}

		link := filepath.FromSlash(entry.Linkname)
		if filepath.IsAbs(link) || !within(root, filepath.Join(parent, link)) {
			return false, errors.Errorf("%w: symlink target %q", errEscape, entry.Linkname)
		}
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return false, errors.Errorf("creating parent directory: %w", err)
		}

		target := filepath.Join(parent, filepath.Base(local))
		if err := os.Symlink(link, target); err != nil {
			return false, errors.Errorf("creating symlink: %w", err)
		}

		// the kernel resolves ".." after earlier links, which Join does not
		if resolved, err := filepath.EvalSymlinks(target); err == nil && !within(root, resolved) {
			os.Remove(target)
			return false, errors.Errorf("%w: symlink target %q", errEscape, entry.Linkname)
		}
		return true, nil

	default:
		return false, nil
	}
}
