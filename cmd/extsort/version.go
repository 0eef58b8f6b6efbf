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

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// revisionLen is how much of a VCS revision is shown
const revisionLen = 12

// buildVersion describes the running binary from its embedded build info,
// e.g. "v1.2.0 (3f2a9c1d0b4e, modified) go1.23.5 linux/amd64".
func buildVersion() string {
	version, revision, modified := "dev", "", false

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			version = v
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}
	}

	if len(revision) > revisionLen {
		revision = revision[:revisionLen]
	}
	switch {
	case revision != "" && modified:
		version = fmt.Sprintf("%s (%s, modified)", version, revision)
	case revision != "":
		version = fmt.Sprintf("%s (%s)", version, revision)
	}

	return fmt.Sprintf("%s %s %s/%s", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
