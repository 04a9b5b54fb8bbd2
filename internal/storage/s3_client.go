package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	ACL        string
}

// Client hosts message images in an S3 compatible bucket.
type Client struct {
	cfg S3Config
	acl types.ObjectCannedACL
	s3  *s3.Client
}

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}
	acl, err := ValidateACL(cfg.ACL)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{cfg: cfg, acl: acl, s3: s3Client}, nil
}

// PutImage uploads body under key and returns the URL clients should load it
// from. Buckets with object ownership enforced need an empty ACL and a bucket
// policy granting public reads.
func (c *Client) PutImage(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if c == nil {
		return "", errors.New("s3 client not initialized")
	}
	if key == "" {
		return "", errors.New("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if c.acl != "" {
		input.ACL = c.acl
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return c.FileURL(key), nil
}

// FileURL returns the public URL of key. Without a configured public base it
// falls back to the virtual-hosted AWS URL, or the path-style endpoint URL.
func (c *Client) FileURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	return fileURL(c.cfg, key)
}

func fileURL(cfg S3Config, key string) string {
	switch {
	case cfg.PublicBase != "":
		return strings.TrimRight(cfg.PublicBase, "/") + "/" + key
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key)
	}
}

// ValidateACL maps a configured canned ACL name. Empty means "send none".
func ValidateACL(acl string) (types.ObjectCannedACL, error) {
	switch acl {
	case "":
		return "", nil
	case "private":
		return types.ObjectCannedACLPrivate, nil
	case "public-read":
		return types.ObjectCannedACLPublicRead, nil
	default:
		return "", fmt.Errorf("invalid acl %q", acl)
	}
}
