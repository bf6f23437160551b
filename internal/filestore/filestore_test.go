package filestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	valid := map[string]string{
		"uploads/a.jpg":      "uploads/a.jpg",
		"qrcodes//qr_a.png":  "qrcodes/qr_a.png",
		"uploads/./b.jpg":    "uploads/b.jpg",
		"uploads/x/../c.jpg": "uploads/c.jpg",
	}
	for in, want := range valid {
		got, err := CleanKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "/etc/passwd", "../secret", "uploads/../../x", `uploads\a.jpg`, "."} {
		_, err := CleanKey(in)
		assert.Error(t, err, in)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "qrcodes/qr_a.png", "image/png", []byte("png bytes")))

	rc, err := store.Open(ctx, "qrcodes/qr_a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	require.NoError(t, store.Delete(ctx, "qrcodes/qr_a.png"))
	_, err = store.Open(ctx, "qrcodes/qr_a.png")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.NoError(t, store.Delete(ctx, "qrcodes/qr_a.png"), "deleting a missing file")
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../outside.txt", "text/plain", []byte("x"))
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	failPut bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("service unavailable")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := &S3{client: fake, bucket: "lostfound"}

	require.NoError(t, store.Put(ctx, "uploads//a.jpg", "image/jpeg", []byte("jpeg")))
	assert.Equal(t, "image/jpeg", fake.types["uploads/a.jpg"])

	rc, err := store.Open(ctx, "uploads/a.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, store.Delete(ctx, "uploads/a.jpg"))
	_, err = store.Open(ctx, "uploads/a.jpg")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestS3PutFailure(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = true
	store := &S3{client: fake, bucket: "lostfound"}

	err := store.Put(context.Background(), "uploads/a.jpg", "image/jpeg", []byte("jpeg"))
	assert.Error(t, err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Options{Region: "eu-central-1"})
	assert.Error(t, err)
}
