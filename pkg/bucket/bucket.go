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

// Package bucket maps file names to the destination subfolder they are sorted into.
package bucket

import (
	"path/filepath"
	"strings"
)

// NoExtension is the bucket used for files without an extension.
const NoExtension = "no_extension"

// 🔍 Extension returns the text after the last "." in the base name of path,
// or "" when there is none. The case is preserved.
//
// The rule follows filepath.Ext, so a dotfile such as ".gitignore" has the
// extension "gitignore" and a trailing dot ("notes.") has none.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(filepath.Base(path)), ".")
}

// 🪣 Name returns the bucket for path. With foldCase set the bucket is lower-cased.
func Name(path string, foldCase bool) string {
	ext := Extension(path)
	if ext == "" {
		return NoExtension
	}
	if foldCase {
		return strings.ToLower(ext)
	}
	return ext
}

// 📍 Destination returns the path of path's copy relative to the destination root.
func Destination(path string, foldCase bool) string {
	return filepath.Join(Name(path, foldCase), filepath.Base(path))
}
