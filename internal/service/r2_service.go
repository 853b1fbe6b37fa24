package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/crosspost-labs/crosspost/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MediaUploader stores raw media bytes and returns a durable public URL.
type MediaUploader interface {
	Upload(ctx context.Context, file []byte, contentType string) (string, error)
}

type R2Service struct {
	config cfg.Config
}

func NewR2Service(cfg cfg.Config) *R2Service {
	return &R2Service{config: cfg}
}

func (r *R2Service) R2Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		log.Fatal(err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	})
}

// Upload writes the file to Cloudflare R2 under a random key and returns the
// public URL it will be served from.
func (r *R2Service) Upload(ctx context.Context, file []byte, contentType string) (string, error) {
	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	r2Client := r.R2Client()

	_, err = r2Client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.config.R2.PublicURL, key), nil
}
