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

package copier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/extsort/pkg/fsys"
	"github.com/walteh/extsort/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

// 🧪 entryFor stats path in fs and builds the walk entry for it
func entryFor(t *testing.T, fs billy.Filesystem, path string) walk.Entry {
	t.Helper()
	info, err := fs.Stat(path)
	require.NoError(t, err)
	return walk.Entry{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestCopy(t *testing.T) {
	long := strings.Repeat("n", 246) + ".txt"

	tests := []struct {
		name       string
		path       string
		foldCase   bool
		wantBucket string
		wantPath   string
	}{
		{name: "extension", path: "a.txt", wantBucket: "txt", wantPath: "txt/a.txt"},
		{name: "upper_case_extension", path: "b.TXT", wantBucket: "TXT", wantPath: "TXT/b.TXT"},
		{name: "folded_extension", path: "b.TXT", foldCase: true, wantBucket: "txt", wantPath: "txt/b.TXT"},
		{name: "no_extension", path: "c", wantBucket: "no_extension", wantPath: "no_extension/c"},
		{name: "nested_source", path: "sub/deep/d.txt", wantBucket: "txt", wantPath: "txt/d.txt"},
		{name: "name_near_name_max", path: long, wantBucket: "txt", wantPath: "txt/" + long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			src, dst := fsys.NewOS(t.TempDir()), fsys.NewOS(t.TempDir())
			require.NoError(t, util.WriteFile(src, tt.path, []byte("payload "+tt.path), 0o644))

			c := New(src, dst, Options{FoldCase: tt.foldCase})
			res, err := c.Copy(ctx, entryFor(t, src, tt.path))
			require.NoError(t, err)

			assert.Equal(t, tt.wantBucket, res.Bucket, "bucket should match")
			assert.Equal(t, fsys.Abs(dst, tt.wantPath), res.Destination, "destination should match")
			assert.Equal(t, fsys.Abs(src, tt.path), res.Source, "source should match")
			assert.Equal(t, int64(len("payload "+tt.path)), res.Bytes)

			got, err := util.ReadFile(dst, tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, "payload "+tt.path, string(got), "content should be copied")

			infos, err := dst.ReadDir(tt.wantBucket)
			require.NoError(t, err)
			assert.Len(t, infos, 1, "no temp files should remain in the bucket")
		})
	}
}

func TestCopyOverwrites(t *testing.T) {
	ctx := testContext(t)
	src, dst := fsys.NewOS(t.TempDir()), fsys.NewOS(t.TempDir())
	require.NoError(t, util.WriteFile(src, "x.log", []byte("new"), 0o644))
	require.NoError(t, util.WriteFile(dst, "log/x.log", []byte("old and longer"), 0o644))

	_, err := New(src, dst, Options{}).Copy(ctx, entryFor(t, src, "x.log"))
	require.NoError(t, err)

	got, err := util.ReadFile(dst, "log/x.log")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestCopyPreservesMetadata(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not preserved on windows")
	}

	ctx := testContext(t)
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	src, dst := fsys.NewOS(srcRoot), fsys.NewOS(dstRoot)

	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "run.sh"), []byte("#!/bin/sh\n"), 0o750))
	require.NoError(t, os.Chmod(filepath.Join(srcRoot, "run.sh"), 0o750))
	mtime := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(srcRoot, "run.sh"), mtime, mtime))

	res, err := New(src, dst, Options{}).Copy(ctx, entryFor(t, src, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dstRoot, "sh", "run.sh"), res.Destination)
	assert.Equal(t, filepath.Join(srcRoot, "run.sh"), res.Source)

	info, err := os.Stat(res.Destination)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm(), "mode should be preserved")
	assert.True(t, info.ModTime().Equal(mtime), "mtime should be preserved, got %s", info.ModTime())
}

func TestCopyLogsSourceAndDestination(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	ctx := logger.WithContext(context.Background())

	src, dst := memfs.New(), memfs.New()
	require.NoError(t, util.WriteFile(src, "a.txt", []byte("a"), 0o644))

	res, err := New(src, dst, Options{}).Copy(ctx, entryFor(t, src, "a.txt"))
	require.NoError(t, err)

	var record map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var r map[string]any
		require.NoError(t, json.Unmarshal(line, &r))
		if r["message"] == "copied file" {
			record = r
		}
	}
	require.NotNil(t, record, "copy should be logged")
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, res.Source, record["source"])
	assert.Equal(t, res.Destination, record["destination"])
}

func TestCopyConcurrentSameBucket(t *testing.T) {
	ctx := testContext(t)
	srcRoot := t.TempDir()
	src, dst := fsys.NewOS(srcRoot), fsys.NewOS(t.TempDir())

	const n = 50
	for i := 0; i < n; i++ {
		require.NoError(t, util.WriteFile(src, fmt.Sprintf("f%02d.dat", i), []byte{byte(i)}, 0o644))
	}

	c := New(src, dst, Options{})
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		entry := entryFor(t, src, fmt.Sprintf("f%02d.dat", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Copy(ctx, entry); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	infos, err := dst.ReadDir("dat")
	require.NoError(t, err)
	assert.Len(t, infos, n)
}

func TestCopyConcurrentSameName(t *testing.T) {
	ctx := testContext(t)
	srcRoot := t.TempDir()
	src, dst := fsys.NewOS(srcRoot), fsys.NewOS(t.TempDir())

	contents := map[string]string{
		"sub1/x.log": "first copy of x",
		"sub2/x.log": "second, longer copy of x",
	}
	for path, content := range contents {
		require.NoError(t, util.WriteFile(src, path, []byte(content), 0o644))
	}

	c := New(src, dst, Options{})
	var wg sync.WaitGroup
	for path := range contents {
		entry := entryFor(t, src, path)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Copy(ctx, entry)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := util.ReadFile(dst, "log/x.log")
	require.NoError(t, err)
	assert.Contains(t, []string{contents["sub1/x.log"], contents["sub2/x.log"]}, string(got), "content should be one whole copy")

	infos, err := dst.ReadDir("log")
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestCopyErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, src, dst billy.Filesystem) walk.Entry
		is    error
	}{
		{
			name: "missing_source",
			setup: func(t *testing.T, src, dst billy.Filesystem) walk.Entry {
				return walk.Entry{Path: "gone.txt", Name: "gone.txt"}
			},
			is: os.ErrNotExist,
		},
		{
			name: "bucket_is_a_file",
			setup: func(t *testing.T, src, dst billy.Filesystem) walk.Entry {
				require.NoError(t, util.WriteFile(src, "a.txt", []byte("a"), 0o644))
				require.NoError(t, util.WriteFile(dst, "txt", []byte("in the way"), 0o644))
				return entryFor(t, src, "a.txt")
			},
		},
		{
			name: "cancelled",
			setup: func(t *testing.T, src, dst billy.Filesystem) walk.Entry {
				require.NoError(t, util.WriteFile(src, "a.txt", []byte("a"), 0o644))
				return entryFor(t, src, "a.txt")
			},
			is: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			if tt.name == "cancelled" {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			srcRoot := t.TempDir()
			src, dst := fsys.NewOS(srcRoot), fsys.NewOS(t.TempDir())
			entry := tt.setup(t, src, dst)

			_, err := New(src, dst, Options{}).Copy(ctx, entry)
			require.Error(t, err)

			var cerr *CopyError
			require.True(t, errors.As(err, &cerr), "error should be a CopyError")
			assert.Equal(t, filepath.Join(srcRoot, entry.Path), cerr.Source)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestCopyUnreadableSource(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permissions are not enforced")
	}

	ctx := testContext(t)
	srcRoot, dstRoot := t.TempDir(), t.TempDir()
	src, dst := fsys.NewOS(srcRoot), fsys.NewOS(dstRoot)
	require.NoError(t, util.WriteFile(src, "secret.key", []byte("s"), 0o644))
	entry := entryFor(t, src, "secret.key")
	require.NoError(t, os.Chmod(filepath.Join(srcRoot, "secret.key"), 0o000))

	_, err := New(src, dst, Options{}).Copy(ctx, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	_, err = os.Stat(filepath.Join(dstRoot, "key", "secret.key"))
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}
