package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"slicehub/api/internal/config"
)

// ObjectStore archives fulfillment receipts so order disputes can be settled
// after the factory's own retention window lapses.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBuckets(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.BucketReceipts)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.BucketReceipts, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.BucketReceipts, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.BucketReceipts, err)
		}
	}
	return nil
}

// ArchiveReceipt stores the factory's fulfillment response keyed by order id.
func (s *ObjectStore) ArchiveReceipt(ctx context.Context, orderID string, receipt []byte) error {
	key := fmt.Sprintf("receipts/%s.json", orderID)
	_, err := s.client.PutObject(ctx, s.cfg.BucketReceipts, key,
		bytes.NewReader(receipt), int64(len(receipt)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive receipt %s: %w", orderID, err)
	}
	return nil
}
