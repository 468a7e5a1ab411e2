package relational

import (
	"errors"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
)

func TestWaitForDBBacksOffBetweenAttempts(t *testing.T) {
	failures := 3
	probe := func() error {
		if failures > 0 {
			failures--
			return errors.New("connection refused")
		}
		return nil
	}

	var sleeps []time.Duration
	sleep := func(d time.Duration) {
		sleeps = append(sleeps, d)
	}

	waitForDB(probe, sleep, log.NewNopLogger())

	if len(sleeps) != 3 {
		t.Fatalf("Got %d sleeps; want one per failed attempt", len(sleeps))
	}
	for _, d := range sleeps {
		if d != retryInterval {
			t.Errorf("Slept %s; want %s", d, retryInterval)
		}
	}
}

func TestWaitForDBReturnsImmediatelyWhenAlive(t *testing.T) {
	called := false
	waitForDB(func() error { return nil }, func(time.Duration) { called = true }, log.NewNopLogger())
	if called {
		t.Error("Expected no sleep when the first probe succeeds")
	}
}
