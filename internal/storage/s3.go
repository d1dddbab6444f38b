package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mohitgusain8671/VoiceNote/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 can delete at most 1000 objects in one request
const maxDeleteBatch = 1000

// S3 stores recordings in an S3 compatible bucket. Setting an account ID
// points it at Cloudflare R2 instead of AWS.
type S3 struct {
	c         *s3.Client
	uploader  *manager.Uploader
	bucket    *string
	publicURL string
}

func NewS3(ctx context.Context, cfg config.S3Storage) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(cfg.Bucket)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		switch {
		case cfg.AccountID != "":
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
			o.Region = "auto"
		case cfg.Endpoint != "":
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.Region = cfg.Region
		default:
			o.Region = cfg.Region
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", cfg.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		c:         client,
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (s *S3) Save(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      s.bucket,
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s, %w", key, err)
	}

	return nil
}

func (s *S3) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 1 {
		_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: s.bucket,
			Key:    aws.String(keys[0]),
		})
		return err
	}

	var errs []error

	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		objects := make([]types.ObjectIdentifier, end-start)
		for i, key := range keys[start:end] {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		out, err := s.c.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: s.bucket,
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("failed to delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
	}

	return errors.Join(errs...)
}

func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.c.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}

		return false, fmt.Errorf("failed to check if object exists, %w", err)
	}

	return true, nil
}

func (s *S3) List(ctx context.Context) ([]Object, error) {
	var objects []Object

	p := s3.NewListObjectsV2Paginator(s.c, &s3.ListObjectsV2Input{
		Bucket: s.bucket,
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket, %w", err)
		}

		for _, o := range page.Contents {
			objects = append(objects, Object{
				Key:     aws.ToString(o.Key),
				ModTime: aws.ToTime(o.LastModified),
			})
		}
	}

	return objects, nil
}

func (s *S3) URL(key string) string {
	return s.publicURL + "/" + key
}
