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
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// 📊 Outcome is what happened to a single file.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCopied          // File landed in its bucket
	OutcomeFailed          // Copy failed
	OutcomeSkipped         // Subtree or file could not be walked
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// 📄 Failure is a file or subtree that did not make it to the destination.
type Failure struct {
	Path    string
	Outcome Outcome
	Err     error
}

// 🔢 Counts is a snapshot of a Summary.
type Counts struct {
	Copied  int
	Failed  int
	Skipped int
	Bytes   int64
}

// Total returns the number of files that were attempted.
func (c Counts) Total() int {
	return c.Copied + c.Failed
}

// 🧾 Summary collects the outcome of a run. It is safe for concurrent use.
type Summary struct {
	mu       sync.Mutex
	counts   Counts
	buckets  map[string]int
	failures []Failure
	started  time.Time
	finished time.Time
}

// 🏭 NewSummary creates a summary for a run starting at start.
func NewSummary(start time.Time) *Summary {
	return &Summary{
		buckets: make(map[string]int),
		started: start,
	}
}

// Copied records a successful copy into bucket.
func (s *Summary) Copied(bucket string, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Copied++
	s.counts.Bytes += bytes
	s.buckets[bucket]++
}

// Failed records a failed copy of path.
func (s *Summary) Failed(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Failed++
	s.failures = append(s.failures, Failure{Path: path, Outcome: OutcomeFailed, Err: err})
}

// Skipped records a path the walk could not enter.
func (s *Summary) Skipped(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Skipped++
	s.failures = append(s.failures, Failure{Path: path, Outcome: OutcomeSkipped, Err: err})
}

// Finish marks the end of the run.
func (s *Summary) Finish(end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = end
}

// Counts returns a snapshot of the counters.
func (s *Summary) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Duration returns how long the run took, or zero while it is still going.
func (s *Summary) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished.IsZero() {
		return 0
	}
	return s.finished.Sub(s.started)
}

// HasFailures reports whether any file failed to copy.
func (s *Summary) HasFailures() bool {
	return s.Counts().Failed > 0
}

// 🪣 BucketCount is the number of files sorted into a bucket.
type BucketCount struct {
	Bucket string
	Files  int
}

// Buckets returns the per-bucket counts sorted by bucket name.
func (s *Summary) Buckets() []BucketCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]BucketCount, 0, len(s.buckets))
	for b, n := range s.buckets {
		out = append(out, BucketCount{Bucket: b, Files: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out
}

// Failures returns the recorded failures sorted by path.
func (s *Summary) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Failure, len(s.failures))
	copy(out, s.failures)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// 📝 Log writes the summary as a single record.
func (s *Summary) Log(ctx context.Context) {
	c := s.Counts()
	zerolog.Ctx(ctx).Info().
		Int("copied", c.Copied).
		Int("failed", c.Failed).
		Int("skipped", c.Skipped).
		Int64("bytes", c.Bytes).
		Dur("duration", s.Duration()).
		Msg("file sorting completed")
}
