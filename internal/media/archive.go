// Package media archives recorded and uploaded answers.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/session"
)

// Archive stores answer media and returns where it was put.
type Archive interface {
	Put(ctx context.Context, key string, m capture.Media) (string, error)
}

// Key returns the object key for a log's media: <student>/<log id>.<ext>.
func Key(student, logID, mimeType string) string {
	return path.Join(student, logID+Extension(mimeType))
}

// Extension maps a MIME type to a file extension, ".bin" when unknown.
func Extension(mimeType string) string {
	if mt := mimetype.Lookup(mimeType); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	return ".bin"
}

// MinioConfig locates the bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// MinioArchive stores media in an S3-compatible bucket.
type MinioArchive struct {
	Client *minio.Client
	Bucket string
}

// NewMinioArchive connects to the bucket, creating it when missing.
func NewMinioArchive(ctx context.Context, cfg MinioConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinioArchive{Client: client, Bucket: cfg.Bucket}, nil
}

func (a *MinioArchive) Put(ctx context.Context, key string, m capture.Media) (string, error) {
	raw, err := m.Bytes()
	if err != nil {
		return "", fmt.Errorf("decode media: %w", err)
	}
	_, err = a.Client.PutObject(ctx, a.Bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: m.MIMEType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return "/" + a.Bucket + "/" + key, nil
}

// LocalArchive writes media under a directory.
type LocalArchive struct {
	Dir string
}

func (a LocalArchive) Put(_ context.Context, key string, m capture.Media) (string, error) {
	raw, err := m.Bytes()
	if err != nil {
		return "", fmt.Errorf("decode media: %w", err)
	}
	dst := filepath.Join(a.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// NopArchive discards media.
type NopArchive struct{}

func (NopArchive) Put(context.Context, string, capture.Media) (string, error) { return "", nil }

// Attach archives the media of each outcome and records where it went on
// the matching log. Failures are logged and leave the log without a key.
func Attach(ctx context.Context, a Archive, student string, outcomes []session.Outcome, logs []profile.AssessmentLog, log *zap.Logger) {
	log = logger.OrNop(log)
	byID := make(map[string]int, len(logs))
	for i := range logs {
		byID[logs[i].ID] = i
	}
	for _, o := range outcomes {
		if o.Media == nil || o.Media.Empty() {
			continue
		}
		i, ok := byID[o.ID]
		if !ok {
			continue
		}
		loc, err := a.Put(ctx, Key(student, o.ID, o.Media.MIMEType), *o.Media)
		if err != nil {
			log.Warn("archive answer media failed", zap.String("log", o.ID), zap.Error(err))
			continue
		}
		logs[i].MediaKey = loc
	}
}
