package s3store

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// Параллельных GET при GetMany: у S3 нет пакетного чтения.
const getManyConcurrency = 8

// ObjectAPI - используемая часть клиента S3.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options - параметры подключения к S3-совместимому хранилищу.
type Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Store хранит каждый ключ отдельным JSON-объектом <prefix><key>.json.
type Store struct {
	client ObjectAPI
	bucket string
	prefix string
}

// New настраивает клиент S3. Endpoint задается для MinIO и других совместимых сервисов.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if strings.TrimSpace(opts.Endpoint) != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewWithClient(client, opts.Bucket, opts.Prefix), nil
}

// NewWithClient оборачивает готовый клиент.
func NewWithClient(client ObjectAPI, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrapf(err, "s3 storage get %s", key)
	}
	defer out.Body.Close()

	value, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "s3 storage read %s", key)
	}
	return value, nil
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	values := make([][]byte, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(getManyConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			value, err := s.Get(gctx, key)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			values[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for i, key := range keys {
		if values[i] != nil {
			result[key] = values[i]
		}
	}
	return result, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "s3 storage put %s", key)
	}
	return nil
}
