package lambda

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stahnma/gh-starneighbours/internal/commands"
	"github.com/stahnma/gh-starneighbours/internal/format"
)

// Event names the repository whose neighbours are computed.
type Event struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// Uploader is the subset of the S3 client the handler uses.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectKey returns the S3 key for owner/repo. pattern may contain one %s,
// replaced by the date.
func ObjectKey(pattern, owner, repo string, now time.Time) string {
	date := now.Format("2006-Jan-02")
	return path.Join(owner, repo, fmt.Sprintf(pattern, date))
}

// NewHandler returns a Lambda handler function that computes neighbours and
// uploads them to S3. A nil uploader is replaced by an S3 client built from
// the default AWS configuration on each invocation.
func NewHandler(app *commands.App, uploader Uploader) func(context.Context, Event) (string, error) {
	return func(ctx context.Context, event Event) (string, error) {
		if event.Owner == "" || event.Repo == "" {
			return "", fmt.Errorf("event must name owner and repo")
		}

		s3Bucket := os.Getenv("S3_BUCKET_NAME")
		s3ObjectKey := os.Getenv("S3_OBJECT_KEY")
		if s3Bucket == "" || s3ObjectKey == "" {
			return "", fmt.Errorf("S3_BUCKET_NAME and S3_OBJECT_KEY environment variables must be set")
		}

		result, err := app.Neighbours(ctx, event.Owner, event.Repo)
		if err != nil {
			return "", fmt.Errorf("neighbours: %w", err)
		}

		var buf bytes.Buffer
		if err := format.WriteJSON(&buf, result, false); err != nil {
			return "", fmt.Errorf("encoding neighbours: %w", err)
		}

		if uploader == nil {
			cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(os.Getenv("AWS_REGION")))
			if err != nil {
				return "", fmt.Errorf("failed to load AWS config: %w", err)
			}
			uploader = s3.NewFromConfig(cfg)
		}

		key := ObjectKey(s3ObjectKey, event.Owner, event.Repo, time.Now())
		_, err = uploader.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s3Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload file to S3: %w", err)
		}

		return fmt.Sprintf("Found %d neighbours of %s/%s and uploaded them to s3://%s/%s",
			len(result), event.Owner, event.Repo, s3Bucket, key), nil
	}
}
