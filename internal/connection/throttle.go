// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package connection

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// maxThrottleBurst caps the token-bucket burst size, and so the largest
// chunk a single throttled Write passes to the underlying writer.
const maxThrottleBurst = 256 * 1024

// throttledWriter is an io.Writer with token-bucket rate limiting, used to
// cap the bandwidth a pipeline flush or mux drain can push down the wire
// when Options.MaxWriteBytesPerSec is set — useful for a client sharing a
// constrained uplink with other traffic.
type throttledWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

// newThrottledWriter wraps w with a rate limiter capped at bytesPerSec. If
// bytesPerSec <= 0, w is returned unwrapped (throttling disabled).
func newThrottledWriter(ctx context.Context, w io.Writer, bytesPerSec int64) io.Writer {
	if bytesPerSec <= 0 {
		return w
	}

	burst := int(bytesPerSec)
	if burst > maxThrottleBurst {
		burst = maxThrottleBurst
	}

	return &throttledWriter{
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
		ctx:     ctx,
	}
}

// Write splits p into burst-sized chunks and blocks on each until the
// limiter's token bucket can admit it.
func (tw *throttledWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := len(p)
		if chunk > tw.limiter.Burst() {
			chunk = tw.limiter.Burst()
		}
		if err := tw.limiter.WaitN(tw.ctx, chunk); err != nil {
			return total, err
		}
		n, err := tw.w.Write(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}
		p = p[n:]
	}
	return total, nil
}
