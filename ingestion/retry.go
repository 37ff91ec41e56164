// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"context"
	"time"
)

// RetryWithBackoff runs operation until it succeeds or maxAttempts is
// exhausted. The delay before a retry starts at baseDelay and doubles
// after every failed attempt.
//
// Context cancellation is observed both before each attempt and while
// waiting out a delay, and takes precedence over the operation's error.
// When all attempts fail, the error from the last one is returned.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := baseDelay
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = operation(); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
