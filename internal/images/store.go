// Package images downloads remote cover images and re-uploads them to object
// storage under a public URL.
package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const defaultMaxBytes = 10 << 20

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket        string
	PublicBaseURL string
	MaxBytes      int64
	Timeout       time.Duration
}

type Store struct {
	s3         S3API
	httpClient *http.Client
	bucket     string
	publicBase string
	maxBytes   int64
}

func NewStore(client S3API, cfg Config) *Store {
	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		s3:         client,
		httpClient: &http.Client{Timeout: timeout},
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		maxBytes:   maxBytes,
	}
}

// FetchAndStore downloads sourceURL and uploads it as the object name,
// returning the object's public URL.
func (s *Store) FetchAndStore(ctx context.Context, sourceURL, name string) (string, error) {
	body, contentType, err := s.fetch(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", sourceURL, err)
	}

	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000"),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	return s.PublicURL(name), nil
}

func (s *Store) PublicURL(name string) string {
	return s.publicBase + "/" + name
}

func (s *Store) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(body)) > s.maxBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", s.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}
