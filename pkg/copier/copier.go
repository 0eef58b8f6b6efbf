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

// Package copier copies walked files into their extension bucket.
package copier

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"github.com/walteh/extsort/pkg/bucket"
	"github.com/walteh/extsort/pkg/fsys"
	"github.com/walteh/extsort/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

const (
	bucketPerm = 0o755
	tempPrefix = ".extsort-" // fixed, so temp names stay short whatever the file name
)

// ❌ CopyError reports a file that could not be copied.
type CopyError struct {
	Source string
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copying %s: %v", e.Source, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// 🔧 Options tunes a Copier.
type Options struct {
	// FoldCase lower-cases bucket names.
	FoldCase bool
}

// 📦 Result describes one copy.
type Result struct {
	Source      string // Source path as seen on the host
	Destination string // Destination path as seen on the host
	Bucket      string // Bucket the file was sorted into
	Bytes       int64  // Bytes written
}

// 📋 Copier copies files from a source filesystem into buckets of a
// destination filesystem. It is safe for concurrent use.
type Copier struct {
	src  billy.Filesystem
	dst  billy.Filesystem
	opts Options
}

// 🏭 New creates a copier from src to dst.
func New(src, dst billy.Filesystem, opts Options) *Copier {
	return &Copier{
		src:  src,
		dst:  dst,
		opts: opts,
	}
}

// 🏃 Copy copies entry to <bucket>/<name> in the destination, replacing any
// file already there. Failures are returned as *CopyError.
func (c *Copier) Copy(ctx context.Context, entry walk.Entry) (Result, error) {
	name := bucket.Name(entry.Name, c.opts.FoldCase)
	target := c.dst.Join(name, entry.Name)

	res := Result{
		Source:      fsys.Abs(c.src, entry.Path),
		Destination: fsys.Abs(c.dst, target),
		Bucket:      name,
	}

	n, err := c.copy(ctx, entry, name, target)
	if err != nil {
		return res, &CopyError{Source: res.Source, Err: err}
	}
	res.Bytes = n

	zerolog.Ctx(ctx).Info().
		Str("source", res.Source).
		Str("destination", res.Destination).
		Msg("copied file")

	return res, nil
}

// copy writes the file next to target and renames it into place, so that
// concurrent copies of the same name never interleave their content.
func (c *Copier) copy(ctx context.Context, entry walk.Entry, dir, target string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Errorf("copy not started: %w", err)
	}

	if err := c.dst.MkdirAll(dir, bucketPerm); err != nil {
		return 0, errors.Errorf("creating bucket %s: %w", dir, err)
	}

	in, err := c.src.Open(entry.Path)
	if err != nil {
		return 0, errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	tmp, err := c.dst.TempFile(dir, tempPrefix)
	if err != nil {
		return 0, errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: in})
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = errors.Errorf("closing temp file: %w", cerr)
	}
	if err != nil {
		_ = c.dst.Remove(tmpName)
		return 0, errors.Errorf("writing %s: %w", tmpName, err)
	}

	c.applyMetadata(ctx, tmpName, entry)

	if err := c.dst.Rename(tmpName, target); err != nil {
		_ = c.dst.Remove(tmpName)
		return 0, errors.Errorf("renaming temp file: %w", err)
	}

	return n, nil
}

// applyMetadata copies mode bits and modification time where the destination
// supports it. Failures are logged, not returned.
func (c *Copier) applyMetadata(ctx context.Context, name string, entry walk.Entry) {
	logger := zerolog.Ctx(ctx)

	if mc, ok := c.dst.(fsys.ModeChanger); ok {
		if err := mc.Chmod(name, entry.Mode.Perm()); err != nil {
			logger.Warn().Err(err).Str("path", name).Msg("preserving mode")
		}
	}

	if tc, ok := c.dst.(fsys.TimesChanger); ok && !entry.ModTime.IsZero() {
		if err := tc.Chtimes(name, entry.ModTime, entry.ModTime); err != nil {
			logger.Warn().Err(err).Str("path", name).Msg("preserving modification time")
		}
	}
}

// contextReader stops a copy once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
