package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Workers:                 2,
		QueueSize:               16,
		MaxRetries:              2,
		RetryDelay:              5 * time.Millisecond,
		GracefulShutdownTimeout: time.Second,
	}
}

func TestNewRequiresWorkerFunc(t *testing.T) {
	if _, err := New(testConfig(), nil, nil); err == nil {
		t.Fatal("expected error for nil worker function")
	}
}

func TestSubmitAndProcess(t *testing.T) {
	var processed int64
	pool, err := New(testConfig(), func(_ context.Context, task *Task) *Result {
		atomic.AddInt64(&processed, 1)
		return &Result{TaskID: task.ID, Success: true, Data: task.Payload}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()

	for i := 0; i < 5; i++ {
		if err := pool.Submit(&Task{ID: fmt.Sprintf("task-%d", i), Payload: i}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	for i := 0; i < 5; i++ {
		select {
		case res := <-pool.Results():
			if !res.Success {
				t.Errorf("task %s failed: %v", res.TaskID, res.Error)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for results")
		}
	}

	if got := atomic.LoadInt64(&processed); got != 5 {
		t.Errorf("processed = %d, want 5", got)
	}
	stats := pool.Stats()
	if stats.TasksSubmitted != 5 || stats.TasksCompleted != 5 {
		t.Errorf("stats = %d submitted / %d completed, want 5/5",
			stats.TasksSubmitted, stats.TasksCompleted)
	}

	pool.Stop()
}

func TestRetryRecoversTransientFailure(t *testing.T) {
	var attempts int64
	pool, err := New(testConfig(), func(_ context.Context, task *Task) *Result {
		if atomic.AddInt64(&attempts, 1) < 2 {
			return &Result{TaskID: task.ID, Success: false, Error: errors.New("transient")}
		}
		return &Result{TaskID: task.ID, Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()

	if err := pool.Submit(&Task{ID: "flaky"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case res := <-pool.Results():
		if !res.Success {
			t.Fatalf("task should succeed on retry: %v", res.Error)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}

	if pool.Stats().TasksRetried != 1 {
		t.Errorf("retried = %d, want 1", pool.Stats().TasksRetried)
	}

	pool.Stop()
}

func TestFailureAfterRetriesExhausted(t *testing.T) {
	pool, err := New(testConfig(), func(_ context.Context, task *Task) *Result {
		return &Result{TaskID: task.ID, Success: false, Error: errors.New("broken")}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()

	if err := pool.Submit(&Task{ID: "doomed"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case res := <-pool.Results():
		if res.Success {
			t.Fatal("task should fail after retries")
		}
		if res.Error == nil {
			t.Fatal("failed result must carry the error")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}

	if pool.Stats().TasksFailed != 1 {
		t.Errorf("failed = %d, want 1", pool.Stats().TasksFailed)
	}

	pool.Stop()
}

func TestSubmitAfterStop(t *testing.T) {
	pool, err := New(testConfig(), func(_ context.Context, task *Task) *Result {
		return &Result{TaskID: task.ID, Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()
	pool.Stop()

	if err := pool.Submit(&Task{ID: "late"}); err == nil {
		t.Fatal("Submit after Stop must be rejected")
	}
}

func TestSubmitRejectsWhenQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1

	block := make(chan struct{})
	pool, err := New(cfg, func(_ context.Context, task *Task) *Result {
		<-block
		return &Result{TaskID: task.ID, Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()
	defer func() {
		close(block)
		pool.Stop()
	}()

	// First task occupies the worker, second fills the queue; keep
	// submitting until the queue rejects.
	deadline := time.After(time.Second)
	for {
		if err := pool.Submit(&Task{ID: "fill"}); err != nil {
			return
		}
		select {
		case <-deadline:
			t.Fatal("queue never filled")
		default:
		}
	}
}
