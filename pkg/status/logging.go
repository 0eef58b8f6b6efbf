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

package status

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 🖨️ Print writes the summary line and every failure to w, coloured when
// the terminal supports it.
func Print(w io.Writer, s *Summary, f Formatter) {
	c := s.Counts()
	line := f.FormatSummary(c, s.Duration())
	if c.Failed > 0 || c.Skipped > 0 {
		fmt.Fprintln(w, color.YellowString(line))
	} else {
		fmt.Fprintln(w, color.GreenString(line))
	}

	for _, fail := range s.Failures() {
		fmt.Fprintln(w, color.RedString(f.FormatFailure(fail)))
	}
}

// 📋 BucketTable renders the per-bucket counts as a table.
func BucketTable(s *Summary) (string, error) {
	data := pterm.TableData{{"bucket", "files"}}
	for _, b := range s.Buckets() {
		data = append(data, []string{b.Bucket, strconv.Itoa(b.Files)})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering bucket table: %w", err)
	}
	return out, nil
}
