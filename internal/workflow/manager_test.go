package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidx/internal/logging"
	"vidx/internal/pipeline"
	"vidx/internal/queue"
	"vidx/internal/services"
	"vidx/internal/testsupport"
)

type stubRunner struct {
	mu     sync.Mutex
	result *pipeline.Result
	err    error
	runs   int
}

func (s *stubRunner) Run(ctx context.Context, product pipeline.ProductContext, images []string) (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRunner) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

type recordingNotifier struct {
	mu     sync.Mutex
	ready  []string
	failed []string
	review []string
}

func (r *recordingNotifier) NotifyVideoReady(ctx context.Context, title, videoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = append(r.ready, title)
	return nil
}

func (r *recordingNotifier) NotifyJobFailed(ctx context.Context, title string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, title)
	return nil
}

func (r *recordingNotifier) NotifyJobNeedsReview(ctx context.Context, title string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.review = append(r.review, title)
	return nil
}

func (r *recordingNotifier) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	return nil
}

func (r *recordingNotifier) TestNotification(ctx context.Context) error { return nil }

func (r *recordingNotifier) counts() (ready, failed, review int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ready), len(r.failed), len(r.review)
}

func newStore(t *testing.T) *queue.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(context.Background(), cfg.QueueDatabasePath())
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func enqueue(t *testing.T, store *queue.Store, title string) *queue.Item {
	t.Helper()
	item, err := store.NewJob(context.Background(), queue.JobSpec{
		Title:       title,
		Category:    "automotive",
		Description: "test listing",
		Price:       100,
		Language:    "ro",
		Images:      []string{"/tmp/img.jpg"},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return item
}

func waitFor(t *testing.T, what string, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startManager(t *testing.T, store *queue.Store, runner Runner, notifier *recordingNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 2
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1

	manager := NewManagerWithNotifier(cfg, store, runner, logging.NewNop(), notifier)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(manager.Stop)
}

func TestManagerProcessesJobToCompletion(t *testing.T) {
	store := newStore(t)
	item := enqueue(t, store, "Renault Wind 2011")
	runner := &stubRunner{result: &pipeline.Result{
		VideoURL:     "https://pub.test.example/videos/a.mp4",
		ThumbnailURL: "https://pub.test.example/videos/b.jpg",
		Script:       "scurt scenariu",
		Captions:     "scurt scenariu",
		WordCount:    2,
		Duration:     17.4,
		Cost:         0.0021,
	}}
	notifier := &recordingNotifier{}
	startManager(t, store, runner, notifier)

	waitFor(t, "job completion", func() bool {
		current, err := store.GetByID(context.Background(), item.ID)
		return err == nil && current.Status == queue.StatusCompleted
	})

	final, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.VideoURL == "" || final.ThumbnailURL == "" || final.Cost == 0 {
		t.Fatalf("result fields not persisted: %+v", final)
	}
	if final.ErrorMessage != "" {
		t.Fatalf("unexpected error message: %q", final.ErrorMessage)
	}
	waitFor(t, "ready notification", func() bool {
		ready, _, _ := notifier.counts()
		return ready == 1
	})
}

func TestManagerRoutesValidationFailuresToReview(t *testing.T) {
	store := newStore(t)
	item := enqueue(t, store, "Broken listing")
	runner := &stubRunner{err: services.Wrap(services.ErrValidation, "script", "validate", "title is required", nil)}
	notifier := &recordingNotifier{}
	startManager(t, store, runner, notifier)

	waitFor(t, "review status", func() bool {
		current, err := store.GetByID(context.Background(), item.ID)
		return err == nil && current.Status == queue.StatusReview
	})

	final, _ := store.GetByID(context.Background(), item.ID)
	if final.ErrorMessage == "" {
		t.Fatal("error message must be persisted")
	}
	waitFor(t, "review notification", func() bool {
		_, failed, review := notifier.counts()
		return review == 1 && failed == 0
	})
}

func TestManagerMarksHardFailures(t *testing.T) {
	store := newStore(t)
	item := enqueue(t, store, "Render crash")
	runner := &stubRunner{err: services.Wrap(services.ErrRender, "video", "render", "renderer failed", errors.New("exit status 1"))}
	notifier := &recordingNotifier{}
	startManager(t, store, runner, notifier)

	waitFor(t, "failed status", func() bool {
		current, err := store.GetByID(context.Background(), item.ID)
		return err == nil && current.Status == queue.StatusFailed
	})
	waitFor(t, "failure notification", func() bool {
		_, failed, review := notifier.counts()
		return failed == 1 && review == 0
	})
}

func TestStartRequeuesStuckJobs(t *testing.T) {
	store := newStore(t)
	item := enqueue(t, store, "Stranded job")
	item.Status = queue.StatusProcessing
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("strand job: %v", err)
	}

	runner := &stubRunner{result: &pipeline.Result{VideoURL: "https://x/v.mp4", ThumbnailURL: "https://x/t.jpg", Cost: 0.001}}
	notifier := &recordingNotifier{}
	startManager(t, store, runner, notifier)

	waitFor(t, "stranded job completion", func() bool {
		current, err := store.GetByID(context.Background(), item.ID)
		return err == nil && current.Status == queue.StatusCompleted
	})
	if runner.runCount() != 1 {
		t.Fatalf("expected one run, got %d", runner.runCount())
	}
}

func TestStartTwiceFails(t *testing.T) {
	store := newStore(t)
	cfg := testsupport.NewConfig(t)
	manager := NewManagerWithNotifier(cfg, store, &stubRunner{}, logging.NewNop(), &recordingNotifier{})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("second start must fail")
	}
}
