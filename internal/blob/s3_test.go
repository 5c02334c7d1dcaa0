package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*input.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, input *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*input.Key]; !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "not found", nil), http.StatusNotFound, "req")
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3StoreAppliesPathPrefix(t *testing.T) {
	fake := newFakeS3()
	store := &S3Store{client: fake, bucket: "artifacts", prefix: "peoplesync"}
	ctx := context.Background()

	require.NoError(t, store.PutJSON(ctx, "users.json", []byte(`{}`)))
	require.Contains(t, fake.objects, "peoplesync/users.json")

	data, err := store.GetJSON(ctx, "users.json")
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(data))
}

func TestS3StoreMissingKey(t *testing.T) {
	store := &S3Store{client: newFakeS3(), bucket: "artifacts"}

	_, err := store.GetJSON(context.Background(), "absent.json")
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := store.Exists(context.Background(), "absent.json")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestS3StoreExists(t *testing.T) {
	fake := newFakeS3()
	store := &S3Store{client: fake, bucket: "artifacts"}
	ctx := context.Background()

	require.NoError(t, store.PutJSON(ctx, "users.json", []byte(`{}`)))

	exists, err := store.Exists(ctx, "users.json")
	require.NoError(t, err)
	require.True(t, exists)
}
