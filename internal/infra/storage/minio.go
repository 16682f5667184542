package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultPresignExpiry = 24 * time.Hour

// Options describes the MinIO/S3 connection used for report export.
type Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PresignExpiry time.Duration
}

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	expiry     time.Duration
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, opt Options) (*Store, error) {
	if opt.Endpoint == "" || opt.Bucket == "" {
		return nil, errors.New("minio: endpoint and bucket are required")
	}
	cli, err := minio.New(opt.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opt.AccessKey, opt.SecretKey, ""),
		Secure: opt.UseSSL,
		Region: opt.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, opt.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: check bucket %s: %w", opt.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opt.Bucket, minio.MakeBucketOptions{Region: opt.Region}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %s: %w", opt.Bucket, err)
		}
	}

	expiry := opt.PresignExpiry
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	return &Store{client: cli, bucketName: opt.Bucket, region: opt.Region, expiry: expiry}, nil
}

// PutReport uploads a JSON report and returns a presigned download link.
func (s *Store) PutReport(ctx context.Context, key string, body []byte) (string, time.Time, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("minio: put %s: %w", key, err)
	}

	// bucket private, jadi pakai presigned URL
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	expires := time.Now().Add(s.expiry)
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.expiry, params)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("minio: presign %s: %w", key, err)
	}
	return u.String(), expires.UTC(), nil
}

// Ping checks that the bucket is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio: bucket %s not found", s.bucketName)
	}
	return nil
}

