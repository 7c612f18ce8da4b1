package storage

import (
	"bytes"
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// Sink is where an export is written
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
	Location(name string) string
}

// DirSink writes exports into a local directory
type DirSink struct {
	Dir string
}

// NewDirSink creates a sink for dir, creating it if needed
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output dir %s", dir)
	}
	return &DirSink{Dir: dir}, nil
}

// Write stores data as dir/name
func (s *DirSink) Write(ctx context.Context, name string, data []byte) error {
	return os.WriteFile(s.Location(name), data, 0o644)
}

// Location returns the file path for name
func (s *DirSink) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// putObjectAPI is the part of the S3 client the sink uses
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads exports to a bucket under a key prefix
type S3Sink struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Sink creates an S3 sink using the default AWS credential chain
func NewS3Sink(ctx context.Context, bucket, prefix, region string) (*S3Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &S3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Write uploads data as one object
func (s *S3Sink) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(name)),
	})
	if err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", s.bucket, s.key(name))
	}
	return nil
}

// Location returns the s3:// URI for name
func (s *S3Sink) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func (s *S3Sink) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// ParseS3URI splits s3://bucket/prefix into its parts
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", errors.Errorf("not an s3 URI: %s", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.Errorf("missing bucket in %s", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// OpenSink returns an S3 sink for s3:// destinations and a directory sink otherwise
func OpenSink(ctx context.Context, dest, region string) (Sink, error) {
	if strings.HasPrefix(dest, "s3://") {
		bucket, prefix, err := ParseS3URI(dest)
		if err != nil {
			return nil, err
		}
		return NewS3Sink(ctx, bucket, prefix, region)
	}
	if dest == "" {
		dest = "."
	}
	return NewDirSink(dest)
}

func contentTypeFor(name string) string {
	if strings.EqualFold(path.Ext(name), ".zip") {
		return "application/zip"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
