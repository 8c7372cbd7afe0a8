package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type fakeObjectAPI struct {
	putIn   *s3.PutObjectInput
	putBody []byte
	getBody string
	headErr error
	err     error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.putIn = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.putBody = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.getBody))}, nil
}

func (f *fakeObjectAPI) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestUploadArtifact(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "storyreel_123.webm")
	if err := os.WriteFile(file, []byte("webm bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	api := &fakeObjectAPI{}
	store := &ArtifactStore{client: api, bucket: "videos", prefix: "renders"}

	key, err := store.UploadArtifact(context.Background(), "job-1", file)
	if err != nil {
		t.Fatalf("UploadArtifact: %v", err)
	}
	if key != "renders/job-1/storyreel_123.webm" {
		t.Errorf("key = %q", key)
	}
	if got := *api.putIn.ContentType; got != "video/webm" {
		t.Errorf("content type = %q", got)
	}
	if *api.putIn.Bucket != "videos" || *api.putIn.Key != key {
		t.Errorf("put target = %s/%s", *api.putIn.Bucket, *api.putIn.Key)
	}
	if string(api.putBody) != "webm bytes" {
		t.Errorf("body = %q", api.putBody)
	}
}

func TestUploadArtifactMissingFile(t *testing.T) {
	store := &ArtifactStore{client: &fakeObjectAPI{}, bucket: "videos"}
	if _, err := store.UploadArtifact(context.Background(), "job", "/does/not/exist.webm"); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestFetch(t *testing.T) {
	store := &ArtifactStore{client: &fakeObjectAPI{getBody: "payload"}, bucket: "videos"}
	rc, err := store.Fetch(context.Background(), "renders/job/x.webm")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "payload" {
		t.Errorf("body = %q", data)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		store := &ArtifactStore{client: &fakeObjectAPI{}, bucket: "b"}
		ok, err := store.Exists(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
	})

	t.Run("NotFound api error means absent", func(t *testing.T) {
		store := &ArtifactStore{client: &fakeObjectAPI{headErr: &smithy.GenericAPIError{Code: "NotFound"}}, bucket: "b"}
		ok, err := store.Exists(ctx, "k")
		if err != nil || ok {
			t.Fatalf("ok=%v err=%v, want absent without error", ok, err)
		}
	})

	t.Run("other errors propagate", func(t *testing.T) {
		store := &ArtifactStore{client: &fakeObjectAPI{headErr: errors.New("access denied")}, bucket: "b"}
		if _, err := store.Exists(ctx, "k"); err == nil {
			t.Fatal("error swallowed")
		}
	})
}

func TestKeyWithoutPrefix(t *testing.T) {
	store := &ArtifactStore{bucket: "b"}
	if got := store.Key("job", "v.webm"); got != "job/v.webm" {
		t.Errorf("key = %q", got)
	}
}
