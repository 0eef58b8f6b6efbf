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

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner runs independent tasks concurrently and waits for all of them
type Runner struct {
	jobs int
}

// 🏗️ NewRunner creates a runner that keeps at most jobs tasks in flight.
// A jobs value of 0 launches every task at once.
func NewRunner(jobs int) *Runner {
	return &Runner{jobs: jobs}
}

// 🏃 Run calls task once for every index in [0, n) and returns when all calls
// have returned. Tasks report their own failures, so one failing task never
// stops the others.
func (r *Runner) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) {
	zerolog.Ctx(ctx).Debug().Int("tasks", n).Int("jobs", r.jobs).Msg("launching tasks")

	var g errgroup.Group
	if r.jobs > 0 {
		g.SetLimit(r.jobs)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			task(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
}
