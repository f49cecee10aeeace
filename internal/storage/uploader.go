package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vidx/internal/config"
)

const keyPrefix = "videos/"

// objectStore is the subset of the S3 client the uploader needs. Tests
// substitute an in-memory implementation.
type objectStore interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader pushes rendered assets to an S3-compatible bucket (Cloudflare R2
// in production) and returns their public URLs.
type Uploader struct {
	store         objectStore
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// UploadResult reports where an asset landed.
type UploadResult struct {
	Key       string
	URL       string
	SizeBytes int64
}

// New builds an uploader from the storage configuration section.
func New(cfg config.Storage) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &Uploader{
		store:         client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}, nil
}

// UploadFile uploads a local file under a content-addressed key and returns
// its public URL. The key embeds the upload timestamp so re-uploading the
// same bytes never collides with an earlier object.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) (UploadResult, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("storage upload: open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("storage upload: stat %s: %w", localPath, err)
	}
	if info.Size() == 0 {
		return UploadResult{}, fmt.Errorf("storage upload: %s is empty", localPath)
	}

	digest := sha256.New()
	if _, err := io.Copy(digest, file); err != nil {
		return UploadResult{}, fmt.Errorf("storage upload: hash %s: %w", localPath, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return UploadResult{}, fmt.Errorf("storage upload: rewind %s: %w", localPath, err)
	}

	key := u.objectKey(digest.Sum(nil), filepath.Ext(localPath))
	opts := minio.PutObjectOptions{ContentType: contentTypeFor(localPath)}
	if _, err := u.store.PutObject(ctx, u.bucket, key, file, info.Size(), opts); err != nil {
		return UploadResult{}, fmt.Errorf("storage upload: put %s: %w", key, err)
	}

	return UploadResult{
		Key:       key,
		URL:       u.publicURL(key),
		SizeBytes: info.Size(),
	}, nil
}

// objectKey derives videos/<UTC timestamp>_<short content hash><ext>.
func (u *Uploader) objectKey(sum []byte, ext string) string {
	stamp := u.now().UTC().Format("20060102_150405")
	short := hex.EncodeToString(sum)[:8]
	return keyPrefix + stamp + "_" + short + strings.ToLower(ext)
}

func (u *Uploader) publicURL(key string) string {
	if u.publicBaseURL == "" {
		return key
	}
	return u.publicBaseURL + "/" + key
}

// contentTypeFor maps the asset types the pipeline produces; anything else
// falls back to a generic octet stream.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".srt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
