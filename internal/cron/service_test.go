package cron

import (
	"context"
	"fmt"
	"testing"
)

type stubLock struct {
	acquired bool
	releases int
}

func (s *stubLock) Acquire(ctx context.Context) (bool, error) { return s.acquired, nil }

func (s *stubLock) Release(ctx context.Context) error {
	s.releases++
	return nil
}

type recordingJob struct {
	name string
	runs int
	err  error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestRunCycle_ExecutesAllJobs(t *testing.T) {
	t.Parallel()

	first := &recordingJob{name: "first", err: fmt.Errorf("boom")}
	second := &recordingJob{name: "second"}
	lock := &stubLock{acquired: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("expected each job to run once, got %d/%d", first.runs, second.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock release, got %d", lock.releases)
	}
}

func TestRunCycle_SkipsWhenLockHeld(t *testing.T) {
	t.Parallel()

	job := &recordingJob{name: "job"}
	lock := &stubLock{acquired: false}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("expected job to be skipped while lock is held elsewhere")
	}
	if lock.releases != 0 {
		t.Fatal("expected no release of a lock we never acquired")
	}
}

func TestRegistry_SkipsNilJobs(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil, &recordingJob{name: "only"})
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 1 || jobs[0].Name() != "only" {
		t.Fatalf("unexpected jobs %v", jobs)
	}
}
