package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/pawonsalam/restosuite/internal/cloudwriter"
	"github.com/pawonsalam/restosuite/internal/dataurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, string) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	svc := NewService(store, testclock.NewClock(now))
	svc.rand = func(int64) int64 { return 123456789 }
	return svc, dir
}

func TestUploadLocal(t *testing.T) {
	svc, dir := newTestService(t)

	url, err := svc.Upload(context.Background(), "data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1715940000000-123456789.jpeg", url)

	data, err := os.ReadFile(filepath.Join(dir, "1715940000000-123456789.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestUploadValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "")
	assert.Equal(t, ErrNoImage, err)

	_, err = svc.Upload(ctx, "aGVsbG8=")
	assert.Equal(t, dataurl.ErrMalformed, err)

	_, err = svc.Upload(ctx, "data:image/svg+xml;base64,aGVsbG8=")
	assert.Equal(t, ErrUnsupported, err)
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func TestUploadStorageFailure(t *testing.T) {
	svc := NewService(failingStore{}, nil)
	_, err := svc.Upload(context.Background(), "data:image/png;base64,aGVsbG8=")
	require.Error(t, err)
	assert.NotEqual(t, ErrUnsupported, err)
}

type memWriter struct {
	factory *memFactory
	key     string
	data    []byte
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *memWriter) Close() error {
	w.factory.objects[w.key] = w.data
	return nil
}

type memFactory struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *memFactory) NewWriter(_ context.Context, bucket, key, contentType string) (cloudwriter.CloudWriter, error) {
	f.types[bucket+"/"+key] = contentType
	return &memWriter{factory: f, key: bucket + "/" + key}, nil
}

func TestS3Store(t *testing.T) {
	factory := &memFactory{objects: map[string][]byte{}, types: map[string]string{}}
	store := NewS3Store(factory, "pawon", "https://cdn.example.com/")

	url, err := store.Save(context.Background(), "1-2.png", "image/png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/1-2.png", url)
	assert.Equal(t, []byte("img"), factory.objects["pawon/uploads/1-2.png"])
	assert.Equal(t, "image/png", factory.types["pawon/uploads/1-2.png"])
}
