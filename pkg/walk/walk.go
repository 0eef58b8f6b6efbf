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

// Package walk enumerates the regular files of a directory tree.
//
// The walk is depth-first and iterative: directories are pushed onto an
// explicit stack instead of being recursed into, so very deep trees do not
// grow the goroutine stack. Files are produced lazily through an iter.Seq2.
//
// Problems with a single subtree (a directory that cannot be read, a dangling
// symlink, a symlink that loops back onto one of its ancestors) are yielded as
// *TraversalError values and the walk carries on with the rest of the tree.
package walk

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrSymlinkCycle is the cause of a TraversalError for a symlinked directory
// that resolves to one of its own ancestors.
var ErrSymlinkCycle = errors.New("symlink cycle")

// 📄 Entry is a regular file found during a walk.
type Entry struct {
	Path    string      // Path inside the walked filesystem
	Name    string      // Base name
	Size    int64       // Size in bytes
	Mode    os.FileMode // Mode of the file (of the target for symlinks)
	ModTime time.Time   // Modification time
}

// ⚠️ TraversalError reports a subtree that could not be walked.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traversing %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// 🔧 Options tunes a walk.
type Options struct {
	// Exclude holds doublestar patterns matched against slash separated paths
	// relative to the walk root. A matching directory is not descended.
	Exclude []string
	// SkipDirs holds directories, relative to the walk root, that are not descended.
	SkipDirs []string
	// NoFollowSymlinks skips symlinks instead of walking their targets.
	NoFollowSymlinks bool
}

type frame struct {
	path  string
	chain []os.FileInfo // the directory and its ancestors, root first
}

type walker struct {
	fs     billy.Filesystem
	root   string
	opts   Options
	logger *zerolog.Logger
}

// 🚶 Files walks fs from root and yields every regular file beneath it.
//
// The error half of each pair is either a *TraversalError, after which the walk
// continues, or the context error, after which it stops. Ordering follows the
// directory listings and is not otherwise guaranteed.
func Files(ctx context.Context, fs billy.Filesystem, root string, opts Options) iter.Seq2[Entry, error] {
	w := &walker{
		fs:     fs,
		root:   root,
		opts:   opts,
		logger: zerolog.Ctx(ctx),
	}

	return func(yield func(Entry, error) bool) {
		rootInfo, err := fs.Stat(root)
		if err != nil {
			yield(Entry{}, &TraversalError{Path: root, Err: err})
			return
		}

		stack := []frame{{path: root, chain: []os.FileInfo{rootInfo}}}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				yield(Entry{}, errors.Errorf("walking %s: %w", root, err))
				return
			}

			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			subdirs, ok := w.expand(dir, yield)
			if !ok {
				return
			}

			// reversed so that subdirectories are visited in listing order
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, subdirs[i])
			}
		}
	}
}

// expand lists one directory, yields its files and returns its subdirectories.
// It returns false once the consumer has stopped the iteration.
func (w *walker) expand(dir frame, yield func(Entry, error) bool) ([]frame, bool) {
	infos, err := w.fs.ReadDir(dir.path)
	if err != nil {
		return nil, yield(Entry{}, &TraversalError{Path: dir.path, Err: err})
	}

	var subdirs []frame
	for _, info := range infos {
		path := w.fs.Join(dir.path, info.Name())

		if w.skipped(path, info.IsDir()) {
			continue
		}

		linked := info.Mode()&os.ModeSymlink != 0
		if linked {
			if w.opts.NoFollowSymlinks {
				w.logger.Debug().Str("path", path).Msg("skipping symlink")
				continue
			}
			target, err := w.fs.Stat(path)
			if err != nil {
				if !yield(Entry{}, &TraversalError{Path: path, Err: err}) {
					return nil, false
				}
				continue
			}
			info = target
		}

		switch {
		case info.IsDir():
			if linked && w.skipped(path, true) {
				continue
			}
			if linked && loops(dir.chain, info) {
				if !yield(Entry{}, &TraversalError{Path: path, Err: ErrSymlinkCycle}) {
					return nil, false
				}
				continue
			}
			chain := append(slices.Clip(dir.chain), info)
			subdirs = append(subdirs, frame{path: path, chain: chain})
		case info.Mode().IsRegular():
			entry := Entry{
				Path:    path,
				Name:    filepath.Base(path),
				Size:    info.Size(),
				Mode:    info.Mode(),
				ModTime: info.ModTime(),
			}
			if !yield(entry, nil) {
				return nil, false
			}
		default:
			w.logger.Debug().Str("path", path).Str("mode", info.Mode().String()).Msg("skipping irregular file")
		}
	}

	return subdirs, true
}

// skipped reports whether path is excluded by the walk options.
func (w *walker) skipped(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}

	if isDir {
		for _, dir := range w.opts.SkipDirs {
			if filepath.Clean(dir) == rel {
				w.logger.Debug().Str("path", path).Msg("skipping directory")
				return true
			}
		}
	}

	rel = filepath.ToSlash(rel)
	for _, pattern := range w.opts.Exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			w.logger.Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			w.logger.Debug().Str("path", rel).Str("pattern", pattern).Msg("path excluded by pattern")
			return true
		}
	}

	return false
}

// loops reports whether info is the same directory as one in chain.
func loops(chain []os.FileInfo, info os.FileInfo) bool {
	for _, ancestor := range chain {
		if os.SameFile(ancestor, info) {
			return true
		}
	}
	return false
}
