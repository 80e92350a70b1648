package leonardo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// pollInterval is the fixed wait between status queries. No jitter, no
	// backoff: determinism keeps the attempt budget exact.
	pollInterval = 2 * time.Second

	// maxPollAttempts caps the poll cycles regardless of the caller's budget,
	// so no caller can request an unbounded wait.
	maxPollAttempts = 30
)

// pollAttempts derives the attempt budget from the caller's timeout: the
// lesser of the hard cap and timeout/interval, floored. Computed once before
// the loop starts, never re-evaluated per cycle.
func pollAttempts(timeout time.Duration) int {
	attempts := int(timeout / pollInterval)
	if attempts > maxPollAttempts {
		attempts = maxPollAttempts
	}
	if attempts < 0 {
		return 0
	}
	return attempts
}

// PollGeneration queries job status at a fixed 2s interval until the job
// completes, fails, or the attempt budget is exhausted. Each cycle sleeps
// first, then queries, so the effective wait is min(timeout, 60s).
//
// COMPLETE returns the non-empty image URLs in API order; COMPLETE with no
// usable URLs is a failure, not an empty success. FAILED aborts immediately.
// Unknown status values keep polling, same as PENDING. A failed status call
// aborts the whole workflow: the only retry here is the designed wait on
// PENDING.
func (c *Client) PollGeneration(ctx context.Context, generationID string, timeout time.Duration) ([]string, error) {
	attempts := pollAttempts(timeout)

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}

		status, err := c.GetGeneration(ctx, generationID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case StatusComplete:
			urls := collectURLs(status.Images)
			if len(urls) == 0 {
				return nil, &Error{
					Code:    ErrGenerationFailed,
					Message: fmt.Sprintf("leonardo: generation %s complete but returned no image URLs", generationID),
				}
			}
			return urls, nil
		case StatusFailed:
			return nil, &Error{
				Code:    ErrGenerationFailed,
				Message: fmt.Sprintf("leonardo: generation %s failed", generationID),
			}
		case StatusPending:
		default:
			// Unrecognized status labels are treated like PENDING so a new
			// upstream state does not break running workflows.
			c.logger.Debug("unknown generation status, still polling",
				zap.String("generation_id", generationID),
				zap.String("status", status.Status),
				zap.Int("attempt", i+1))
		}
	}

	elapsed := time.Duration(attempts) * pollInterval
	return nil, &Error{
		Code:    ErrPollTimeout,
		Message: fmt.Sprintf("leonardo: generation %s timed out after %.0f seconds", generationID, elapsed.Seconds()),
	}
}

// Generate runs the full submit-then-poll workflow: one submission, then
// bounded polling with the given budget. It returns the job identifier
// together with the produced image URLs.
func (c *Client) Generate(ctx context.Context, req GenerationRequest, pollTimeout time.Duration) (*GenerationResult, error) {
	start := time.Now()

	id, err := c.CreateGeneration(ctx, req)
	if err != nil {
		c.recordWorkflow("submit_failed", time.Since(start), 0)
		return nil, err
	}

	urls, err := c.PollGeneration(ctx, id, pollTimeout)
	if err != nil {
		c.recordWorkflow(workflowOutcome(err), time.Since(start), 0)
		return nil, err
	}

	c.recordWorkflow("success", time.Since(start), len(urls))
	c.logger.Info("generation complete",
		zap.String("generation_id", id),
		zap.Int("images", len(urls)),
		zap.Duration("duration", time.Since(start)))
	return &GenerationResult{GenerationID: id, ImageURLs: urls}, nil
}

func workflowOutcome(err error) string {
	var lErr *Error
	if errors.As(err, &lErr) && lErr.Code == ErrPollTimeout {
		return "timeout"
	}
	return "failed"
}
