package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/syncjob"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/memory"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
)

type blockingRunner struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{})}
}

func (r *blockingRunner) RunSync(_ context.Context, season int, _ bool) (SyncSummary, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	<-r.release
	if r.err != nil {
		return SyncSummary{}, r.err
	}
	return SyncSummary{Season: season}, nil
}

func (r *blockingRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newJobService(t *testing.T, runner SyncRunner) (*SyncJobService, *memory.SyncJobRepository) {
	t.Helper()
	repo := memory.NewSyncJobRepository()
	svc, err := NewSyncJobService(repo, runner, nil, SyncJobConfig{}, logging.NewNop())
	if err != nil {
		t.Fatalf("new job service: %v", err)
	}
	return svc, repo
}

func waitForTerminal(t *testing.T, repo *memory.SyncJobRepository, jobID string) syncjob.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, ok, err := repo.GetByID(context.Background(), jobID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if ok && job.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return syncjob.Job{}
}

func TestSyncJobService_DebounceReturnsSameJob(t *testing.T) {
	runner := newBlockingRunner()
	svc, _ := newJobService(t, runner)
	defer func() {
		close(runner.release)
		svc.Close()
	}()

	first, err := svc.CreateJob(context.Background(), 2025, false)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateJob(context.Background(), 2025, false)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected debounced job id %s, got %s", first.ID, second.ID)
	}
}

func TestSyncJobService_ActiveJobSingleFlight(t *testing.T) {
	runner := newBlockingRunner()
	svc, repo := newJobService(t, runner)
	defer svc.Close()

	// Zero debounce window is normalized to the default, so bypass it with a
	// different request key instead: the active-job check must still collapse
	// the request onto the running job.
	first, err := svc.CreateJob(context.Background(), 2025, false)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	second, err := svc.CreateJob(context.Background(), 2024, true)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected active job %s, got %s", first.ID, second.ID)
	}

	close(runner.release)
	job := waitForTerminal(t, repo, first.ID)
	if job.Status != syncjob.StatusSucceeded {
		t.Fatalf("expected success, got %s (%s)", job.Status, job.Error)
	}
	if runner.callCount() != 1 {
		t.Fatalf("expected single execution, got %d", runner.callCount())
	}
}

// slowIDGenerator stretches the job-creation window so concurrent callers
// overlap inside it.
type slowIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *slowIDGenerator) NewID() (string, error) {
	time.Sleep(50 * time.Millisecond)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return "job-" + strconv.Itoa(g.next), nil
}

func TestSyncJobService_ConcurrentCreateSingleFlight(t *testing.T) {
	runner := newBlockingRunner()
	repo := memory.NewSyncJobRepository()
	svc, err := NewSyncJobService(repo, runner, &slowIDGenerator{}, SyncJobConfig{}, logging.NewNop())
	if err != nil {
		t.Fatalf("new job service: %v", err)
	}
	defer svc.Close()

	const callers = 4
	jobs := make([]syncjob.Job, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Alternate the request key so the debounce cache cannot mask
			// the active-job check.
			jobs[i], errs[i] = svc.CreateJob(context.Background(), 2025, i%2 == 0)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	winner := jobs[0].ID
	for i, job := range jobs {
		if job.ID != winner {
			t.Fatalf("caller %d got job %s, want the single active job %s", i, job.ID, winner)
		}
	}

	active, ok, err := repo.GetActive(context.Background())
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if !ok || active.ID != winner {
		t.Fatalf("expected %s as the only active job, got %+v ok=%v", winner, active, ok)
	}

	close(runner.release)
	waitForTerminal(t, repo, winner)
	if runner.callCount() != 1 {
		t.Fatalf("expected single execution, got %d", runner.callCount())
	}
}

func TestSyncJobService_FailureTruncatesError(t *testing.T) {
	runner := newBlockingRunner()
	runner.err = errors.New(strings.Repeat("x", syncjob.MaxErrorLength+200))
	svc, repo := newJobService(t, runner)
	defer svc.Close()

	job, err := svc.CreateJob(context.Background(), 2025, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	close(runner.release)

	finished := waitForTerminal(t, repo, job.ID)
	if finished.Status != syncjob.StatusFailed {
		t.Fatalf("expected failed job, got %s", finished.Status)
	}
	if len(finished.Error) != syncjob.MaxErrorLength {
		t.Fatalf("expected truncated error of %d chars, got %d", syncjob.MaxErrorLength, len(finished.Error))
	}
}

func TestSyncJobService_NewJobAfterCompletion(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	svc, repo := newJobService(t, runner)
	defer svc.Close()

	first, err := svc.CreateJob(context.Background(), 2025, false)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	waitForTerminal(t, repo, first.ID)

	// Different request key sidesteps the debounce window; with no active
	// job remaining a fresh one is created.
	second, err := svc.CreateJob(context.Background(), 2024, false)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a new job after the first completed")
	}

	if _, err := svc.GetJob(context.Background(), second.ID); err != nil {
		t.Fatalf("get job: %v", err)
	}
	if _, err := svc.GetJob(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
