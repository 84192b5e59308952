package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/criyle/go-static-judge/submission"
	"github.com/minio/minio-go/v7"
)

type fakePutter struct {
	bucket, object string
	body           []byte
	contentType    string
	err            error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket, f.object, f.contentType = bucket, object, opts.ContentType
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.body = b
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func TestMinioArchive(t *testing.T) {
	fp := &fakePutter{}
	m := &Minio{client: fp, bucket: "reports", prefix: "judge"}
	s := &submission.Submission{ID: "abc", TaskGroup: "basics", TaskID: 2, Status: submission.StatusPassed}

	if err := m.Archive(context.Background(), s); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if fp.bucket != "reports" || fp.object != "judge/basics/2/abc.json" || fp.contentType != "application/json" {
		t.Errorf("unexpected upload %s/%s (%s)", fp.bucket, fp.object, fp.contentType)
	}
	var got submission.Submission
	if err := json.Unmarshal(fp.body, &got); err != nil {
		t.Fatalf("uploaded body is not a submission: %v", err)
	}
	if got.ID != "abc" || got.Status != submission.StatusPassed {
		t.Errorf("uploaded %+v", got)
	}
}

func TestMinioArchiveError(t *testing.T) {
	m := &Minio{client: &fakePutter{err: errors.New("denied")}, bucket: "b"}
	if err := m.Archive(context.Background(), &submission.Submission{ID: "x"}); err == nil {
		t.Error("expected upload error")
	}
}

func TestNewMinioRequiresBucket(t *testing.T) {
	if _, err := NewMinio(context.Background(), Config{Endpoint: "localhost:9000"}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestMinioObjectNameStaysUnderPrefix(t *testing.T) {
	m := &Minio{prefix: "reports"}
	for _, tc := range []struct {
		group, id, want string
	}{
		{"basics", "abc", "reports/basics/1/abc.json"},
		{"../../secret", "abc", "reports/..%2F..%2Fsecret/1/abc.json"},
		{"..", "abc", "reports/%2E%2E_/1/abc.json"},
		{".", "abc", "reports/%2E_/1/abc.json"},
		{"", "abc", "reports/_/1/abc.json"},
		{"a/b", "../x", "reports/a%2Fb/1/..%2Fx.json"},
	} {
		got := m.ObjectName(&submission.Submission{ID: tc.id, TaskGroup: tc.group, TaskID: 1})
		if got != tc.want {
			t.Errorf("ObjectName(%q, %q) = %q, want %q", tc.group, tc.id, got, tc.want)
		}
		if !strings.HasPrefix(got, "reports/") || strings.Count(got, "/") != 3 {
			t.Errorf("ObjectName(%q, %q) = %q escapes its segment", tc.group, tc.id, got)
		}
	}
}
