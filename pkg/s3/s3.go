package s3

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// Feedback clips are played once, right after the command resolves, so the
// links do not need to outlive the request by much.
const presignTTL = 15 * time.Minute

// ItfS3 stores generated audio feedback clips. Uploads return the object
// location; playback goes through short-lived presigned URLs.
type ItfS3 interface {
	UploadAudio(data []byte, name, contentType string) (string, error)
	PresignUrl(fileUrl string) (string, error)
}

type s3Client struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

func New() (ItfS3, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		session:    sess,
		bucketName: os.Getenv("AWS_BUCKET_NAME"),
	}, nil
}

func (s *s3Client) UploadAudio(data []byte, name, contentType string) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	if contentType == "" {
		contentType = "audio/mpeg"
	}
	key := fmt.Sprintf("voice-feedback/%s-%s", uuid.New().String(), name)

	uploadOutput, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return uploadOutput.Location, nil
}

// PresignUrl signs a playback link for an object this client uploaded. The
// location comes straight from UploadAudio, so the object is not re-checked
// before signing.
func (s *s3Client) PresignUrl(fileUrl string) (string, error) {
	key, err := objectKey(fileUrl)
	if err != nil {
		return "", err
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return req.Presign(presignTTL)
}

// objectKey recovers the bucket key from an upload location, accepting both
// a full object URL and a bare key.
func objectKey(fileUrl string) (string, error) {
	if !strings.Contains(fileUrl, "://") {
		return fileUrl, nil
	}

	parsed, err := url.Parse(fileUrl)
	if err != nil {
		return "", fmt.Errorf("failed to parse object location: %w", err)
	}

	key, err := url.QueryUnescape(strings.TrimPrefix(parsed.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to decode object key: %w", err)
	}
	return key, nil
}
