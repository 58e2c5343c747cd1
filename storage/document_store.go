package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Dosada05/gaming-portal/models"
)

type S3DocumentStoreConfig struct {
	// Endpoint is the S3-compatible API URL. Empty means AWS itself.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	// UsePathStyle addresses the bucket in the path instead of the host name.
	UsePathStyle bool
}

// S3DocumentStore writes each document as a JSON object under
// <prefix>/<collection>/<uuid>.json.
type S3DocumentStore struct {
	cfg S3DocumentStoreConfig

	mu     sync.Mutex
	client *s3.Client

	newID func() string
}

func NewS3DocumentStore(cfg S3DocumentStoreConfig) (*S3DocumentStore, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, errors.New("invalid document store configuration: access key, secret and bucket are required")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	return &S3DocumentStore{
		cfg:   cfg,
		newID: func() string { return uuid.NewString() },
	}, nil
}

// s3Client builds the client on first use and keeps it for the process
// lifetime. A failed attempt is retried on the next call.
func (s *S3DocumentStore) s3Client(ctx context.Context) (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, "")),
		config.WithRegion(s.cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for document store: %w", err)
	}

	s.client = s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
		}
		o.UsePathStyle = s.cfg.UsePathStyle
	})
	return s.client, nil
}

func (s *S3DocumentStore) objectKey(collection, id string) string {
	return path.Join(s.cfg.Prefix, collection, id+".json")
}

func (s *S3DocumentStore) PutDocument(ctx context.Context, collection string, doc models.Document) (string, error) {
	if collection == "" {
		return "", errors.New("collection name is required")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document for %s: %w", collection, err)
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return "", err
	}

	id := s.newID()
	key := s.objectKey(collection, id)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document (key: %s): %w", key, err)
	}
	return id, nil
}
