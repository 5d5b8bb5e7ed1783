package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/config"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarService hands out short-lived presigned S3 PUT URLs so clients
// upload avatars directly to the bucket. The server never proxies image
// bytes.
type AvatarService struct {
	presigner *s3.PresignClient
	bucket    string
	baseURL   string
}

func NewAvatarService(ctx context.Context, cfg *config.Config) (*AvatarService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &AvatarService{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
		baseURL:   strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

// PresignUpload returns a presigned PUT URL and the public URL the
// avatar will be readable at once uploaded.
func (s *AvatarService) PresignUpload(ctx context.Context, userID uuid.UUID, contentType string) (uploadURL, publicURL string, err error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", "", ErrUnsupportedImage
	}

	key := path.Join("avatars", userID.String(), time.Now().UTC().Format("20060102150405")+ext)
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigned, err := s.presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}

	return presigned.URL, s.baseURL + "/" + key, nil
}
