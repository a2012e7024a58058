package minio

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	appconfig "github.com/GoArmGo/EcoFinds/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 понимает ровно те запросы, которые делает клиент: HEAD/PUT бакета и PUT объекта
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]

	if len(parts) == 1 || parts[1] == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			f.buckets[bucket] = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodPut || !f.buckets[bucket] {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.objects[parts[1]] = body
	f.types[parts[1]] = r.Header.Get("Content-Type")
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func testConfig(endpoint string) *appconfig.Config {
	cfg := &appconfig.Config{}
	cfg.Minio.Endpoint = strings.TrimPrefix(endpoint, "http://")
	cfg.Minio.AccessKeyID = "minio"
	cfg.Minio.SecretAccessKey = "minio123"
	cfg.Minio.BucketName = "receipts"
	cfg.Minio.Region = "us-east-1"
	return cfg
}

func TestUploadFileCreatesBucketAndStoresObject(t *testing.T) {
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(srv.URL)
	cfg.Minio.PublicURL = "https://files.ecofinds.test/"

	client, err := NewMinioClient(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.True(t, fake.buckets["receipts"])

	url, err := client.UploadFile(context.Background(), "receipts/u-1/r-1.json", []byte(`{"total":10}`), "application/json")
	require.NoError(t, err)

	assert.Equal(t, "https://files.ecofinds.test/receipts/receipts/u-1/r-1.json", url)
	assert.Contains(t, string(fake.objects["receipts/u-1/r-1.json"]), `{"total":10}`)
	assert.Equal(t, "application/json", fake.types["receipts/u-1/r-1.json"])
}

func TestNewMinioClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("http://localhost:9000")
	cfg.Minio.SecretAccessKey = ""

	_, err := NewMinioClient(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
