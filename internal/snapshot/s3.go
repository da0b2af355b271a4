package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/model"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps snapshots as objects under a key prefix.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3StoreFromConfig wires the store to a configured client.
func NewS3StoreFromConfig(cfg *config.S3Config) *S3Store {
	return NewS3Store(cfg.Client, cfg.BucketName, cfg.Prefix)
}

func (s *S3Store) Save(ctx context.Context, snap *model.MenuSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := encode(&buf, snap); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	key := KeyFor(snap)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Store) Load(ctx context.Context, key string) (*model.MenuSnapshot, error) {
	if !IsKey(key) {
		return nil, fmt.Errorf("%w: invalid key %q", ErrNotFound, key)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + path.Base(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	defer out.Body.Close()
	return decode(out.Body)
}

func (s *S3Store) Latest(ctx context.Context) (string, error) {
	var latest string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + keyPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if IsKey(name) && name > latest {
				latest = name
			}
		}
	}
	if latest == "" {
		return "", ErrNotFound
	}
	return latest, nil
}
