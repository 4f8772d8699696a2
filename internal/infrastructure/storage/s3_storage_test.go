package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecooks/profitability/internal/infrastructure/config"
)

func TestNewS3Exporter_Validation(t *testing.T) {
	_, err := NewS3Exporter(context.Background(), config.ExportConfig{})
	assert.ErrorIs(t, err, ErrBucketRequired)
}

func testExportConfig(endpoint string) config.ExportConfig {
	return config.ExportConfig{
		Enabled:         true,
		Bucket:          "hc-exports",
		Region:          "eu-west-2",
		Endpoint:        endpoint,
		Prefix:          "exports/",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	}
}

func TestS3Exporter_Export(t *testing.T) {
	var (
		mu        sync.Mutex
		gotMethod string
		gotPath   string
		gotType   string
		gotBody   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath, gotType, gotBody = r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exporter, err := NewS3Exporter(context.Background(), testExportConfig(server.URL))
	require.NoError(t, err)

	location, err := exporter.Export(context.Background(), "products.csv", []byte("Product ID,Handle\n1,lasagne\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "s3://hc-exports/exports/products.csv", location)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/hc-exports/exports/products.csv", gotPath)
	assert.Equal(t, "text/csv", gotType)
	assert.Contains(t, gotBody, "1,lasagne")
}

func TestS3Exporter_ExportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<?xml version="1.0"?><Error><Code>AccessDenied</Code></Error>`))
	}))
	defer server.Close()

	exporter, err := NewS3Exporter(context.Background(), testExportConfig(server.URL))
	require.NoError(t, err)

	_, err = exporter.Export(context.Background(), "x.csv", []byte("a"), "text/csv")
	assert.Error(t, err)

	_, err = exporter.Export(context.Background(), "", nil, "text/csv")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestS3Exporter_DownloadURL(t *testing.T) {
	exporter, err := NewS3Exporter(context.Background(), testExportConfig("http://localhost:9000"))
	require.NoError(t, err)

	link, expires, err := exporter.DownloadURL(context.Background(), "retail.csv", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:9000/hc-exports/exports/retail.csv?"))
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)
}

func TestLocalExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exporter := NewLocalExporter(dir)

	p, err := exporter.Export(context.Background(), "../escape.csv", []byte("a,b\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.csv"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	_, err = exporter.Export(context.Background(), "", nil, "")
	assert.ErrorIs(t, err, ErrNameRequired)
}
