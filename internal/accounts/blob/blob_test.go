package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{"profile_images/u1/a.png", true},
		{"a.png", true},
		{"", false},
		{"/etc/passwd", false},
		{"../a.png", false},
		{"profile_images/../../a.png", false},
		{"profile_images//a.png", false},
		{"a\\b.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := cleanKey(tt.key)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidKey)
			}
		})
	}
}

func TestLocalStorePutAndServe(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "profile_images/u1/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "/uploads/profile_images/u1/a.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "profile_images", "u1", "a.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(b))

	h := http.StripPrefix("/uploads", s.Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/profile_images/u1/a.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/profile_images/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../escape.png", "image/png", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidKey)
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	fp := &fakePutter{}
	s := &S3Store{client: fp, bucket: "avatars", baseURL: "http://minio:9000/avatars"}

	// a plain io.Reader is buffered into a seekable body
	url, err := s.Put(context.Background(), "profile_images/u1/a.png", "image/png", io.MultiReader(strings.NewReader("png")))
	require.NoError(t, err)
	require.Equal(t, "http://minio:9000/avatars/profile_images/u1/a.png", url)

	require.Equal(t, "avatars", aws.ToString(fp.in.Bucket))
	require.Equal(t, "profile_images/u1/a.png", aws.ToString(fp.in.Key))
	require.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
	require.Equal(t, "png", fp.body)
}

func TestS3StorePutError(t *testing.T) {
	s := &S3Store{client: &fakePutter{err: errors.New("denied")}, bucket: "b", baseURL: "x"}
	_, err := s.Put(context.Background(), "k.png", "image/png", strings.NewReader("x"))
	require.ErrorContains(t, err, "denied")
}

func TestPublicBaseURL(t *testing.T) {
	require.Equal(t, "https://cdn.example.com", publicBaseURL(S3Config{PublicBaseURL: "https://cdn.example.com", Bucket: "b"}))
	require.Equal(t, "http://minio:9000/b", publicBaseURL(S3Config{Endpoint: "http://minio:9000/", Bucket: "b"}))
	require.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBaseURL(S3Config{Bucket: "b", Region: "eu-west-1"}))
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	require.Error(t, err)
}
