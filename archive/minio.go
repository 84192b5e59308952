// Package archive uploads completed submission records to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/criyle/go-static-judge/submission"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config defines the MinIO / S3 archive location
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	Secure    bool
}

// objectPutter is the subset of the minio client used by the archive
type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Minio archives submissions as JSON objects named <prefix>/<group>/<task>/<id>.json
type Minio struct {
	client objectPutter
	bucket string
	prefix string
}

// NewMinio creates the client and checks that the bucket exists
func NewMinio(ctx context.Context, conf Config) (*Minio, error) {
	if conf.Endpoint == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("minio: endpoint and bucket are required")
	}
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.Secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: failed to create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("minio: bucket %s does not exist", conf.Bucket)
	}
	return &Minio{
		client: client,
		bucket: conf.Bucket,
		prefix: conf.Prefix,
	}, nil
}

// ObjectName returns the object key of a submission.
// The group and id are escaped so that they always stay a single key segment below the prefix.
func (m *Minio) ObjectName(s *submission.Submission) string {
	return path.Join(m.prefix, escapeSegment(s.TaskGroup), fmt.Sprint(s.TaskID), escapeSegment(s.ID)+".json")
}

func escapeSegment(s string) string {
	s = url.PathEscape(s)
	switch s {
	case "", ".", "..":
		return strings.Repeat("%2E", len(s)) + "_"
	}
	return s
}

// Archive uploads the submission record
func (m *Minio) Archive(ctx context.Context, s *submission.Submission) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	name := m.ObjectName(s)
	_, err = m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("minio: failed to upload to %s: %w", name, err)
	}
	return nil
}
