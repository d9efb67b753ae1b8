package async

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRunnerValidation(t *testing.T) {
	if _, err := NewRunner(0, func(context.Context) error { return nil }); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, err := NewRunner(time.Second, nil); err == nil {
		t.Error("expected error for nil task")
	}
}

func TestTriggerDroppedWhileBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32

	r, err := NewRunner(time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	if !r.Trigger() {
		t.Fatal("first trigger should be accepted")
	}
	<-started

	for i := 0; i < 5; i++ {
		if r.Trigger() {
			t.Fatal("trigger during in-flight run should be dropped")
		}
	}
	close(release)

	deadline := time.After(time.Second)
	for r.Busy() {
		select {
		case <-deadline:
			t.Fatal("run never finished")
		case <-time.After(time.Millisecond):
		}
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}

func TestVisibilityGateSkipsTicks(t *testing.T) {
	var visible atomic.Bool
	var runs atomic.Int32

	r, err := NewRunner(time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, WithVisibility(visible.Load))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	if r.Trigger() {
		t.Error("hidden view should skip the tick")
	}
	visible.Store(true)
	if !r.Trigger() {
		t.Error("visible view should accept the tick")
	}

	deadline := time.After(time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("accepted trigger never ran")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestRunNowCancelsInFlightRun(t *testing.T) {
	firstStarted := make(chan struct{})
	firstCancelled := make(chan struct{})
	var runs atomic.Int32

	r, err := NewRunner(time.Hour, func(ctx context.Context) error {
		n := runs.Add(1)
		if n == 1 {
			close(firstStarted)
			<-ctx.Done()
			close(firstCancelled)
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	r.Trigger()
	<-firstStarted
	r.RunNow()

	select {
	case <-firstCancelled:
	case <-time.After(time.Second):
		t.Fatal("RunNow did not cancel the in-flight run")
	}

	deadline := time.After(time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("replacement run never started, runs = %d", runs.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestStopAbortsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	aborted := make(chan struct{})

	r, err := NewRunner(time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(aborted)
		return ctx.Err()
	})
	if err != nil {
		t.Fatal(err)
	}

	r.Start()
	r.Trigger()
	<-started

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-aborted:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the in-flight run")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	if r.Trigger() {
		t.Error("trigger after Stop should be rejected")
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	r, err := NewRunner(time.Hour, func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	r.Start()
	r.Start()
	r.Stop()
}
