// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"

	"github.com/nishisan-dev/respclient/internal/pipeline"
	"github.com/nishisan-dev/respclient/internal/resp"
)

// Pipeline accumulates commands and flushes them as one batch, optionally
// wrapped in MULTI/EXEC. It is not safe for concurrent Queue/Flush calls
// from multiple goroutines — build and flush a batch from one goroutine.
type Pipeline struct {
	p *pipeline.Pipeline
}

// Queue appends a command to the pending batch without sending anything.
func (p *Pipeline) Queue(name string, args ...Arg) {
	p.p.Queue(resp.NewCommand(name, args...))
}

// Len reports how many commands are currently queued.
func (p *Pipeline) Len() int {
	return p.p.Len()
}

// Flush sends every queued command in one buffered write and returns
// their replies in submission order. The queue is cleared whether or
// not Flush succeeds.
func (p *Pipeline) Flush(ctx context.Context) ([]Reply, error) {
	return p.p.Flush(ctx)
}
