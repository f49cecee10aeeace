package queue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSpec() JobSpec {
	return JobSpec{
		Title:       "Renault Wind 2011",
		Category:    "automotive",
		Description: "Roadster compact, motor 1.2 benzina, 100 CP.",
		Price:       6500,
		Language:    "ro",
		Details:     map[string]any{"year": 2011, "make": "Renault"},
		Images:      []string{"/tmp/img1.jpg", "/tmp/img2.jpg"},
	}
}

func TestNewJobRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, testSpec())
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if item.Status != StatusPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}
	if item.Language != "ro" {
		t.Fatalf("unexpected language: %s", item.Language)
	}
	images, err := item.Images()
	if err != nil {
		t.Fatalf("decode images: %v", err)
	}
	if len(images) != 2 || images[0] != "/tmp/img1.jpg" {
		t.Fatalf("unexpected images: %v", images)
	}
	details, err := item.Details()
	if err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details["make"] != "Renault" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestClaimNextMarksProcessing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.NewJob(ctx, testSpec())
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if _, err := store.NewJob(ctx, testSpec()); err != nil {
		t.Fatalf("new job: %v", err)
	}

	claimed, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil {
		t.Fatal("expected a claimed job")
	}
	if claimed.ID != first.ID {
		t.Fatalf("expected oldest job %d, got %d", first.ID, claimed.ID)
	}
	if claimed.Status != StatusProcessing {
		t.Fatalf("expected processing, got %s", claimed.Status)
	}

	stored, err := store.GetByID(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusProcessing {
		t.Fatalf("claim not persisted, got %s", stored.Status)
	}
}

func TestClaimNextEmptyQueue(t *testing.T) {
	store := openTestStore(t)
	item, err := store.ClaimNext(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item, got %+v", item)
	}
}

func TestUpdatePersistsResult(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, testSpec())
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	item.Status = StatusCompleted
	item.VideoURL = "https://cdn.example.com/videos/a.mp4"
	item.ThumbnailURL = "https://cdn.example.com/videos/t.jpg"
	item.Script = "Un roadster compact."
	item.Duration = 17.5
	item.Cost = 0.0071
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusCompleted || stored.VideoURL != item.VideoURL {
		t.Fatalf("result not persisted: %+v", stored)
	}
	if stored.Cost != 0.0071 {
		t.Fatalf("cost not persisted: %f", stored.Cost)
	}
}

func TestRetryOnlyTerminalFailures(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, testSpec())
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := store.Retry(ctx, item.ID); err == nil {
		t.Fatal("expected retry of pending job to fail")
	}

	item.SetFailed(StatusFailed, "synthesis failed")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Retry(ctx, item.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}
	stored, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("expected pending after retry, got %s", stored.Status)
	}
	if stored.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", stored.ErrorMessage)
	}
}

func TestResetStuck(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.NewJob(ctx, testSpec()); err != nil {
		t.Fatalf("new job: %v", err)
	}
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatalf("claim: %v", err)
	}
	reset, err := store.ResetStuck(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset job, got %d", reset)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetByID(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCountsAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for range 3 {
		if _, err := store.NewJob(ctx, testSpec()); err != nil {
			t.Fatalf("new job: %v", err)
		}
	}
	item, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	item.Status = StatusCompleted
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[StatusPending] != 2 || counts[StatusCompleted] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 cleared job, got %d", removed)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Pending "); !ok || status != StatusPending {
		t.Fatalf("unexpected parse result: %s %v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
}
