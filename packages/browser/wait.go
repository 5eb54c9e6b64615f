package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultWaitTimeout bounds how long WaitUntil polls a condition.
	DefaultWaitTimeout = 10 * time.Second
	// DefaultPollInterval is the pacing between condition checks.
	DefaultPollInterval = 250 * time.Millisecond
)

// Condition is a predicate polled by WaitUntil. Returning
// ErrNoSuchElement or ErrStaleElement counts as "not yet" rather than a
// terminal failure.
type Condition func(ctx context.Context) (bool, error)

// WaitUntil polls a condition until it holds or the timeout elapses.
// Polls are paced with a rate limiter so a slow condition check does not
// compress the interval between attempts.
func WaitUntil(ctx context.Context, cond Condition, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)

	var lastErr error
	for {
		if err := limiter.Wait(waitCtx); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w after %v: %v", ErrTimeout, timeout, lastErr)
			}
			return fmt.Errorf("%w after %v", ErrTimeout, timeout)
		}

		ok, err := cond(waitCtx)
		if ok && err == nil {
			return nil
		}
		if err != nil && !retryable(err) {
			return err
		}
		lastErr = err
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrNoSuchElement) || errors.Is(err, ErrStaleElement)
}

// Visible holds when the element exists and is displayed.
func Visible(s Session, by By) Condition {
	return func(ctx context.Context) (bool, error) {
		el, err := s.Find(ctx, by)
		if err != nil {
			return false, err
		}
		return el.Displayed(ctx)
	}
}

// Clickable holds when the element is displayed and enabled.
func Clickable(s Session, by By) Condition {
	return func(ctx context.Context) (bool, error) {
		el, err := s.Find(ctx, by)
		if err != nil {
			return false, err
		}
		displayed, err := el.Displayed(ctx)
		if err != nil || !displayed {
			return false, err
		}
		return el.Enabled(ctx)
	}
}

// PageLoaded holds when document.readyState reports "complete".
func PageLoaded(s Session) Condition {
	return func(ctx context.Context) (bool, error) {
		state, err := s.ExecuteScript(ctx, "return document.readyState")
		if err != nil {
			return false, err
		}
		return state == "complete", nil
	}
}

// TitleMatches holds when the page title equals or contains the given
// strings. An empty expectation is ignored.
func TitleMatches(s Session, equals, contains string) Condition {
	return func(ctx context.Context) (bool, error) {
		title, err := s.Title(ctx)
		if err != nil {
			return false, err
		}
		if equals != "" && title != equals {
			return false, nil
		}
		if contains != "" && !strings.Contains(title, contains) {
			return false, nil
		}
		return true, nil
	}
}
