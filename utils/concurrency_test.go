package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestStringSetNoDuplicates(t *testing.T) {
	s := NewStringSet()

	added := s.Add("Kerkstraat 1")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("Kerkstraat 1")
	if added {
		t.Error("second Add of same value should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestStringSetConcurrency(t *testing.T) {
	s := NewStringSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("Dorpsstraat 5") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolWaitIsBarrier(t *testing.T) {
	pool := NewWorkerPool(4, 0)
	var done int64

	for i := 0; i < 16; i++ {
		pool.Submit(func() {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&done, 1)
		})
	}
	pool.Wait()

	if done != 16 {
		t.Errorf("Wait returned before all jobs finished: %d/16", done)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var timestamps []time.Time
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			<-mu
			timestamps = append(timestamps, time.Now())
			mu <- struct{}{}
		})
	}
	pool.Wait()

	// Timestamps are taken inside the jobs, so allow a little scheduler
	// jitter below the configured interval.
	minGap := time.Duration(rateLimitMs) * time.Millisecond * 8 / 10
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		if gap < minGap {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, minGap)
		}
	}
}
