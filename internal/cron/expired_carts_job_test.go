package cron

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/greencartlabs/greencart-backend/pkg/logger"
)

type stubReaper struct {
	batches []int64
	err     error
	calls   int
	limits  []int
}

func (s *stubReaper) DeleteExpiredGuestCarts(ctx context.Context, before time.Time, limit int) (int64, error) {
	s.calls++
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.batches) == 0 {
		return 0, nil
	}
	next := s.batches[0]
	s.batches = s.batches[1:]
	return next, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestExpiredCartsJob_DrainsInBatches(t *testing.T) {
	t.Parallel()

	reaper := &stubReaper{batches: []int64{2, 2, 1}}
	job, err := NewExpiredCartsJob(ExpiredCartsJobParams{
		Logger:    testLogger(),
		Carts:     reaper,
		BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("NewExpiredCartsJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reaper.calls != 3 {
		t.Fatalf("expected 3 batches, got %d", reaper.calls)
	}
	for _, limit := range reaper.limits {
		if limit != 2 {
			t.Fatalf("expected batch limit 2, got %d", limit)
		}
	}
}

func TestExpiredCartsJob_StopsOnShortBatch(t *testing.T) {
	t.Parallel()

	reaper := &stubReaper{batches: []int64{0}}
	job, err := NewExpiredCartsJob(ExpiredCartsJobParams{
		Logger:    testLogger(),
		Carts:     reaper,
		BatchSize: 10,
	})
	if err != nil {
		t.Fatalf("NewExpiredCartsJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reaper.calls != 1 {
		t.Fatalf("expected a single batch, got %d", reaper.calls)
	}
}

func TestExpiredCartsJob_PropagatesError(t *testing.T) {
	t.Parallel()

	reaper := &stubReaper{err: fmt.Errorf("db down")}
	job, err := NewExpiredCartsJob(ExpiredCartsJobParams{
		Logger: testLogger(),
		Carts:  reaper,
	})
	if err != nil {
		t.Fatalf("NewExpiredCartsJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewExpiredCartsJob_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewExpiredCartsJob(ExpiredCartsJobParams{Carts: &stubReaper{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewExpiredCartsJob(ExpiredCartsJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without cart repository")
	}
}
