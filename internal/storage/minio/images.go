// Package minio stores uploaded form images in an S3-compatible bucket.
package minio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// ErrInvalidImage is returned for images that are empty, too large or of a
// content type that is not allowed.
var ErrInvalidImage = errors.New("invalid image")

// Config holds the bucket connection and upload limits.
type Config struct {
	Endpoint            string
	AccessKey           string
	SecretKey           string
	Bucket              string
	PublicBaseURL       string
	MaxSizeBytes        int64
	AllowedContentTypes []string
}

// ImageStorage uploads images with PutObject and returns their public URL.
type ImageStorage struct {
	cfg    Config
	client *mclient.Client
}

var _ domain.ImageUploader = (*ImageStorage)(nil)

// New connects to the endpoint and checks that the bucket exists.
// The endpoint may carry an http:// or https:// scheme, which selects TLS.
func New(ctx context.Context, cfg Config) (*ImageStorage, error) {
	const op = "storage/minio/New"

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &ImageStorage{cfg: cfg, client: client}, nil
}

func newClient(cfg Config) (*mclient.Client, error) {
	endpoint := cfg.Endpoint
	secure := false
	// A bare host:port parses as a scheme, so only full URLs are split.
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
		}
		endpoint = u.Host
		secure = u.Scheme == "https"
	}
	return mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
}

// Upload stores blob under key and returns PublicBaseURL + "/" + key.
func (s *ImageStorage) Upload(ctx context.Context, blob *domain.Blob, key string) (string, error) {
	const op = "storage/minio/Upload"

	if blob == nil || blob.Body == nil {
		return "", fmt.Errorf("%s: %w: no content", op, ErrInvalidImage)
	}
	if s.cfg.MaxSizeBytes > 0 && blob.Size > s.cfg.MaxSizeBytes {
		return "", fmt.Errorf("%s: %w: %d bytes exceeds %d", op, ErrInvalidImage, blob.Size, s.cfg.MaxSizeBytes)
	}

	body := bufio.NewReaderSize(blob.Body, 512)
	contentType := blob.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := body.Peek(512)
		if len(head) == 0 {
			return "", fmt.Errorf("%s: %w: empty file", op, ErrInvalidImage)
		}
		contentType = http.DetectContentType(head)
	}
	if !s.allowed(contentType) {
		return "", fmt.Errorf("%s: %w: content type %q", op, ErrInvalidImage, contentType)
	}

	size := blob.Size
	if size <= 0 {
		size = -1
	}
	var reader io.Reader = body
	if s.cfg.MaxSizeBytes > 0 {
		// The declared size may be missing or wrong: read one byte past the
		// limit so an oversized body is rejected instead of cut short.
		data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxSizeBytes+1))
		if err != nil {
			return "", fmt.Errorf("%s: read image: %w", op, err)
		}
		if int64(len(data)) > s.cfg.MaxSizeBytes {
			return "", fmt.Errorf("%s: %w: exceeds %d bytes", op, ErrInvalidImage, s.cfg.MaxSizeBytes)
		}
		reader, size = bytes.NewReader(data), int64(len(data))
	}

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, reader, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.publicURL(key), nil
}

func (s *ImageStorage) allowed(contentType string) bool {
	if len(s.cfg.AllowedContentTypes) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return slices.Contains(s.cfg.AllowedContentTypes, strings.TrimSpace(mediaType))
}

func (s *ImageStorage) publicURL(key string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = "/" + s.cfg.Bucket
	}
	return base + "/" + key
}
