package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

type fakeStore struct {
	bucket      string
	key         string
	contentType string
	payload     []byte
	err         error
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket = bucket
	f.key = key
	f.contentType = opts.ContentType
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.payload = data
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func testUploader(store *fakeStore, at time.Time) *Uploader {
	return &Uploader{
		store:         store,
		bucket:        "videos",
		publicBaseURL: "https://pub.example.com",
		now:           func() time.Time { return at },
	}
}

func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

func TestUploadFileKeyAndURL(t *testing.T) {
	store := &fakeStore{}
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	uploader := testUploader(store, at)

	path := writeAsset(t, "final.mp4", "rendered-bytes")
	result, err := uploader.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !strings.HasPrefix(result.Key, "videos/20250314_092653_") {
		t.Fatalf("key missing timestamp prefix: %s", result.Key)
	}
	if !strings.HasSuffix(result.Key, ".mp4") {
		t.Fatalf("key missing extension: %s", result.Key)
	}
	hash := strings.TrimSuffix(strings.TrimPrefix(result.Key, "videos/20250314_092653_"), ".mp4")
	if len(hash) != 8 {
		t.Fatalf("expected 8 hex hash chars, got %q", hash)
	}
	if result.URL != "https://pub.example.com/"+result.Key {
		t.Fatalf("unexpected URL: %s", result.URL)
	}
	if store.contentType != "video/mp4" {
		t.Fatalf("unexpected content type: %s", store.contentType)
	}
	if string(store.payload) != "rendered-bytes" {
		t.Fatalf("payload corrupted after hashing: %q", store.payload)
	}
	if result.SizeBytes != int64(len("rendered-bytes")) {
		t.Fatalf("unexpected size: %d", result.SizeBytes)
	}
}

func TestUploadTimestampSaltsIdenticalContent(t *testing.T) {
	store := &fakeStore{}
	path := writeAsset(t, "final.mp4", "same-bytes")

	first := testUploader(store, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	second := testUploader(store, time.Date(2025, 1, 1, 10, 0, 1, 0, time.UTC))

	a, err := first.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	b, err := second.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if a.Key == b.Key {
		t.Fatalf("identical content produced colliding keys: %s", a.Key)
	}
}

func TestUploadContentTypes(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":  "video/mp4",
		"voice.mp3": "audio/mpeg",
		"thumb.jpg": "image/jpeg",
		"thumb.png": "image/png",
		"data.bin":  "application/octet-stream",
	}
	for name, want := range cases {
		store := &fakeStore{}
		uploader := testUploader(store, time.Now())
		path := writeAsset(t, name, "content")
		if _, err := uploader.UploadFile(context.Background(), path); err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
		if store.contentType != want {
			t.Fatalf("%s: expected %s, got %s", name, want, store.contentType)
		}
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	uploader := testUploader(&fakeStore{}, time.Now())
	path := writeAsset(t, "empty.mp4", "")
	if _, err := uploader.UploadFile(context.Background(), path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestUploadMissingFile(t *testing.T) {
	uploader := testUploader(&fakeStore{}, time.Now())
	if _, err := uploader.UploadFile(context.Background(), "/nonexistent/final.mp4"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestUploadPropagatesStoreError(t *testing.T) {
	uploader := testUploader(&fakeStore{err: errors.New("access denied")}, time.Now())
	path := writeAsset(t, "final.mp4", "bytes")
	_, err := uploader.UploadFile(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("expected store error, got %v", err)
	}
}
