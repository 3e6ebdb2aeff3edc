package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client is the subset of the S3 API used by S3Store.
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps one object per key in a bucket (or any S3 compatible API).
type S3Store struct {
	client    S3Client
	uploader  *manager.Uploader
	bucket    string
	keyPrefix string
}

func NewS3Store(client S3Client, bucket, keyPrefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &S3Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}, nil
}

func (s *S3Store) objectKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + "/" + key
}

func (s *S3Store) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isMissingObject(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, fmt.Errorf("read object %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *S3Store) Set(ctx context.Context, key, value string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil && !isMissingObject(err) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys below the configured prefix.
func (s *S3Store) Keys(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.keyPrefix != "" {
		input.Prefix = aws.String(s.keyPrefix + "/")
	}

	var keys []string
	for {
		output, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range output.Contents {
			name := aws.ToString(obj.Key)
			if s.keyPrefix != "" {
				name = strings.TrimPrefix(name, s.keyPrefix+"/")
			}
			keys = append(keys, name)
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}
	return keys, nil
}

func isMissingObject(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

var (
	_ Store  = (*S3Store)(nil)
	_ Lister = (*S3Store)(nil)
)
