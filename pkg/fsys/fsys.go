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

// Package fsys provides the filesystems extsort reads from and writes to.
package fsys

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"gitlab.com/tozd/go/errors"
)

// 🕒 TimesChanger is implemented by filesystems that can set file times.
type TimesChanger interface {
	Chtimes(name string, atime, mtime time.Time) error
}

// 🔐 ModeChanger is implemented by filesystems that can set file modes.
type ModeChanger interface {
	Chmod(name string, mode os.FileMode) error
}

// 💽 OS is a billy filesystem rooted at a host directory that can also
// change file times and modes.
type OS struct {
	billy.Filesystem
}

var (
	_ TimesChanger = (*OS)(nil)
	_ ModeChanger  = (*OS)(nil)
)

// 🏭 NewOS returns a filesystem rooted at root. Symlinks are resolved by the
// host, so links pointing outside root are followed.
func NewOS(root string) *OS {
	return &OS{Filesystem: osfs.New(root, osfs.WithChrootOS())}
}

// Chtimes implements TimesChanger.
func (o *OS) Chtimes(name string, atime, mtime time.Time) error {
	if err := os.Chtimes(Abs(o, name), atime, mtime); err != nil {
		return errors.Errorf("setting times on %q: %w", name, err)
	}
	return nil
}

// Chmod implements ModeChanger.
func (o *OS) Chmod(name string, mode os.FileMode) error {
	if err := os.Chmod(Abs(o, name), mode); err != nil {
		return errors.Errorf("setting mode on %q: %w", name, err)
	}
	return nil
}

// 📍 Abs returns name joined to the root of fs, for display.
func Abs(fs billy.Filesystem, name string) string {
	return filepath.Join(fs.Root(), name)
}
