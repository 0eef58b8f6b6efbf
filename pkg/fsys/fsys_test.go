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

package fsys

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOS(t *testing.T) {
	root := t.TempDir()
	fs := NewOS(root)

	require.NoError(t, util.WriteFile(fs, "a.txt", []byte("hello"), 0o600))
	assert.Equal(t, filepath.Join(root, "a.txt"), Abs(fs, "a.txt"))

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, fs.Chtimes("a.txt", mtime, mtime))
	require.NoError(t, fs.Chmod("a.txt", 0o640))

	info, err := os.Stat(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "mtime should be applied")
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestOSErrors(t *testing.T) {
	fs := NewOS(t.TempDir())

	err := fs.Chtimes("missing", time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.Error(t, fs.Chmod("missing", 0o644))
}

func TestAbsMemory(t *testing.T) {
	fs := memfs.New()
	assert.Equal(t, filepath.Join(fs.Root(), "txt", "a.txt"), Abs(fs, filepath.Join("txt", "a.txt")))
}
