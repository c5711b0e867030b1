package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/config"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rs/zerolog/log"
)

const imageKeyPrefix = "blog-images/"

// sniffLength is how many leading bytes mimetype needs to identify an image.
const sniffLength = 3072

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageStore keeps cover images for blog posts in an S3 bucket.
type ImageStore struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
	maxBytes      int64
}

// StoredImage describes an uploaded image.
type StoredImage struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// NewImageStore builds the store from IMAGE_BUCKET, AWS_REGION,
// IMAGE_PUBLIC_BASE_URL and MAX_UPLOAD_MB. It returns nil, nil when no
// bucket is configured so callers can answer 503 for uploads.
func NewImageStore(ctx context.Context, cfg map[string]string) (*ImageStore, error) {
	bucket := config.GetString(cfg, "IMAGE_BUCKET", "")
	if bucket == "" {
		log.Warn().Msg("IMAGE_BUCKET not set, image uploads are disabled")
		return nil, nil
	}

	region := config.GetString(cfg, "AWS_REGION", "us-east-1")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	baseURL := config.GetString(cfg, "IMAGE_PUBLIC_BASE_URL", fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region))
	maxMB := config.GetInt(cfg, "MAX_UPLOAD_MB", 10)

	return newImageStore(s3.NewFromConfig(awsCfg), bucket, baseURL, int64(maxMB)<<20), nil
}

func newImageStore(client objectPutter, bucket, publicBaseURL string, maxBytes int64) *ImageStore {
	return &ImageStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		maxBytes:      maxBytes,
	}
}

// MaxBytes is the largest accepted upload.
func (s *ImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Upload sniffs body, rejects anything that is not an image and stores it
// under a fresh key. The file name is only used for logging.
func (s *ImageStore) Upload(ctx context.Context, name string, body io.Reader) (*StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("image", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, errs.NewMaxBodySizeExceededError(s.maxBytes)
	}
	if len(data) == 0 {
		return nil, errs.NewMissingRequiredFieldError("file")
	}

	head := data
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	mtype := mimetype.Detect(head)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errs.NewUnsupportedMediaTypeError(mtype.String(), []string{"image/*"})
	}

	key := imageKeyPrefix + uuid.NewString() + mtype.Extension()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mtype.String()),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, errs.NewServiceError("s3", err)
	}

	log.Info().Str("key", key).Str("originalName", name).Str("contentType", mtype.String()).Int("size", len(data)).Msg("Stored blog image")
	return &StoredImage{
		URL:         s.publicBaseURL + "/" + key,
		Key:         key,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
	}, nil
}
