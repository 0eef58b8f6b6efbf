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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🚫 ValidationError reports a source or destination that cannot be used.
// It is the only error that stops a run before any file is touched.
type ValidationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// 📁 Paths are the validated, absolute roots of a run.
type Paths struct {
	Source      string
	Destination string
}

// ✅ Validate resolves source and destination to absolute paths, checks that
// source is an existing directory and creates destination with its parents.
// Nothing is created when source is invalid.
func Validate(ctx context.Context, source, destination string) (Paths, error) {
	logger := zerolog.Ctx(ctx)

	src, err := filepath.Abs(source)
	if err != nil {
		return Paths{}, &ValidationError{Path: source, Reason: "resolving source", Err: err}
	}
	dst, err := filepath.Abs(destination)
	if err != nil {
		return Paths{}, &ValidationError{Path: destination, Reason: "resolving destination", Err: err}
	}

	info, err := os.Stat(src)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Paths{}, &ValidationError{Path: src, Reason: "source folder does not exist"}
	case err != nil:
		return Paths{}, &ValidationError{Path: src, Reason: "cannot access source folder", Err: err}
	case !info.IsDir():
		return Paths{}, &ValidationError{Path: src, Reason: "source is not a directory"}
	}

	if info, err := os.Stat(dst); err == nil && !info.IsDir() {
		return Paths{}, &ValidationError{Path: dst, Reason: "destination is not a directory"}
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return Paths{}, &ValidationError{Path: dst, Reason: "cannot create destination folder", Err: err}
	}

	logger.Debug().Str("source", src).Str("destination", dst).Msg("validated paths")

	return Paths{Source: src, Destination: dst}, nil
}

// nestedDir returns destination relative to source when destination lies
// strictly inside source.
func nestedDir(source, destination string) (string, bool) {
	rel, err := filepath.Rel(source, destination)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return "", false
	}
	if len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return "", false
	}
	return rel, true
}
