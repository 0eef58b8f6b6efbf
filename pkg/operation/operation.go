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

package operation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"github.com/walteh/extsort/pkg/bucket"
	"github.com/walteh/extsort/pkg/copier"
	"github.com/walteh/extsort/pkg/fsys"
	"github.com/walteh/extsort/pkg/status"
	"github.com/walteh/extsort/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

// walkRoot is where walks start inside the source filesystem
const walkRoot = "/"

// 🔧 Options contains the tunables of a sort run
type Options struct {
	// Jobs caps the number of copies in flight, 0 launches them all at once
	Jobs int
	// FoldCase lower-cases bucket names
	FoldCase bool
	// Exclude holds doublestar patterns, relative to the source, to skip
	Exclude []string
	// NoFollowSymlinks skips symlinks instead of following them
	NoFollowSymlinks bool

	// skipDirs holds source-relative directories that are never walked
	skipDirs []string
	// inPlace is set when source and destination are the same directory
	inPlace bool
}

// 📦 Sorter sorts the files of one filesystem into extension buckets of another
type Sorter struct {
	src      billy.Filesystem
	dst      billy.Filesystem
	walkOpts walk.Options
	copier   *copier.Copier
	runner   *Runner
	foldCase bool
	inPlace  bool
}

// 🏭 NewSorter creates a sorter from src into dst
func NewSorter(src, dst billy.Filesystem, opts Options) *Sorter {
	return &Sorter{
		src: src,
		dst: dst,
		walkOpts: walk.Options{
			Exclude:          opts.Exclude,
			SkipDirs:         opts.skipDirs,
			NoFollowSymlinks: opts.NoFollowSymlinks,
		},
		copier:   copier.New(src, dst, copier.Options{FoldCase: opts.FoldCase}),
		runner:   NewRunner(opts.Jobs),
		foldCase: opts.FoldCase,
		inPlace:  opts.inPlace,
	}
}

// 🏃 Run validates source and destination, then sorts every file of source
// into destination. Only a *ValidationError is returned before sorting
// starts; per-file problems are reported through the summary.
func Run(ctx context.Context, source, destination string, opts Options) (*status.Summary, error) {
	paths, err := Validate(ctx, source, destination)
	if err != nil {
		return nil, err
	}

	if rel, ok := nestedDir(paths.Source, paths.Destination); ok {
		zerolog.Ctx(ctx).Debug().Str("path", paths.Destination).Msg("destination is inside source, it will not be walked")
		opts.skipDirs = append(opts.skipDirs, rel)
	}
	opts.inPlace = paths.Source == paths.Destination

	return NewSorter(fsys.NewOS(paths.Source), fsys.NewOS(paths.Destination), opts).Sort(ctx)
}

// 🔄 Sort walks the whole source tree, then copies every file found with one
// task per file, and returns once every task has settled. The error is only
// set when ctx was cancelled; the summary is always returned.
func (s *Sorter) Sort(ctx context.Context) (*status.Summary, error) {
	logger := zerolog.Ctx(ctx)
	summary := status.NewSummary(time.Now())

	logger.Info().
		Str("source", s.src.Root()).
		Str("destination", s.dst.Root()).
		Msg("starting file sorting")

	entries := s.collect(ctx, summary)
	logger.Debug().Int("files", len(entries)).Msg("traversal complete")

	s.runner.Run(ctx, len(entries), func(ctx context.Context, i int) {
		s.copyOne(ctx, entries[i], summary)
	})

	summary.Finish(time.Now())
	summary.Log(ctx)

	if err := ctx.Err(); err != nil {
		return summary, errors.Errorf("sorting interrupted: %w", err)
	}
	return summary, nil
}

// collect drains the walk. Subtrees that cannot be walked are logged and
// recorded as skipped.
func (s *Sorter) collect(ctx context.Context, summary *status.Summary) []walk.Entry {
	logger := zerolog.Ctx(ctx)

	var entries []walk.Entry
	for entry, err := range walk.Files(ctx, s.src, walkRoot, s.walkOpts) {
		if err == nil {
			if s.inPlace && s.sorted(entry) {
				logger.Debug().Str("path", entry.Path).Msg("already in its bucket")
				continue
			}
			entries = append(entries, entry)
			continue
		}

		var terr *walk.TraversalError
		if !errors.As(err, &terr) {
			logger.Warn().Err(err).Msg("traversal interrupted")
			break
		}

		path := fsys.Abs(s.src, terr.Path)
		logger.Warn().Err(terr.Err).Str("path", path).Msg("skipping subtree")
		summary.Skipped(path, terr.Err)
	}

	return entries
}

// sorted reports whether entry already sits where it would be copied to,
// which only happens when sorting a directory into itself.
func (s *Sorter) sorted(entry walk.Entry) bool {
	want := filepath.Join(walkRoot, bucket.Destination(entry.Name, s.foldCase))
	return filepath.Clean(entry.Path) == want
}

// copyOne copies a single entry and records the outcome
func (s *Sorter) copyOne(ctx context.Context, entry walk.Entry, summary *status.Summary) {
	res, err := s.copier.Copy(ctx, entry)
	if err == nil {
		summary.Copied(res.Bucket, res.Bytes)
		return
	}

	cause := err
	var cerr *copier.CopyError
	if errors.As(err, &cerr) {
		cause = cerr.Err
	}

	zerolog.Ctx(ctx).Error().
		Err(cause).
		Str("source", res.Source).
		Str("destination", res.Destination).
		Msg("copy failed")
	summary.Failed(res.Source, cause)
}
