// Package poller drives the wait loop between the controller and a guest
// running a long test payload. The guest is the only authority on its own
// completion; the controller cannot see process state across the VM
// boundary (hibernation and reboots take the network down with them), so
// the only robust signal is the content of a durable state file, read over
// and over until it turns terminal or the deadline passes.
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hvlab/guest-harness/internal/classify"
	"github.com/hvlab/guest-harness/internal/models"
	srvErrors "github.com/hvlab/guest-harness/pkg/errors"
	"github.com/hvlab/guest-harness/pkg/jobs"
)

// StateReader fetches the current guest state file content.
type StateReader func(ctx context.Context) (string, error)

// Session is one wait loop: a poll interval and a hard deadline. Sessions
// are ephemeral; they exist for a single AwaitTerminal or AwaitHandles call
// and always finish in finite time.
type Session struct {
	Interval time.Duration
	Deadline time.Time
}

func NewSession(interval, timeout time.Duration) Session {
	return Session{
		Interval: interval,
		Deadline: time.Now().Add(timeout),
	}
}

// AwaitTerminal polls read until the classified content is terminal or the
// deadline elapses. The deadline is checked before every read, so no read
// happens past it; on timeout the outcome is forced to Aborted together
// with a TimeoutError.
//
// A read failure is never terminal: the guest may be mid-reboot and back
// shortly, so the error is swallowed and the loop retries until the
// deadline. Unrecognized content (Unknown) keeps the loop going the same
// way; the state file may simply not exist yet.
func (s Session) AwaitTerminal(ctx context.Context, read StateReader) (models.TestOutcome, error) {
	log := zap.S().Named("poller")

	for {
		if !time.Now().Before(s.Deadline) {
			log.Warnw("deadline elapsed before terminal state", "deadline", s.Deadline)
			return models.OutcomeAborted, srvErrors.NewTimeoutError("await terminal state", s.Deadline)
		}

		raw, err := read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return models.OutcomeAborted, ctx.Err()
			}
			log.Debugw("state read failed, retrying", "error", err)
		} else {
			outcome := classify.Classify(raw)
			if outcome.IsTerminal() {
				return outcome, nil
			}
			log.Debugw("still waiting", "state", outcome)
		}

		select {
		case <-ctx.Done():
			return models.OutcomeAborted, ctx.Err()
		case <-time.After(s.Interval):
		}
	}
}

// AwaitHandles waits until every background handle has stopped running or
// the deadline elapses. There is no cancel signal to the guest: on timeout
// the controller just stops watching and the remote processes keep whatever
// fate they had.
func (s Session) AwaitHandles(ctx context.Context, handles []*jobs.Handle) error {
	for {
		running := 0
		for _, h := range handles {
			if h.IsRunning() {
				running++
			}
		}
		if running == 0 {
			return nil
		}

		if !time.Now().Before(s.Deadline) {
			zap.S().Named("poller").Warnw("handles still running at deadline", "running", running)
			return srvErrors.NewTimeoutError("await background handles", s.Deadline)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Interval):
		}
	}
}
