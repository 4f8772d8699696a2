package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/config"
	"github.com/homecooks/profitability/internal/infrastructure/storage"
)

func TestExportSinks(t *testing.T) {
	t.Run("local only", func(t *testing.T) {
		sinks, err := exportSinks(context.Background(), config.ExportConfig{}, t.TempDir(), zap.NewNop())
		require.NoError(t, err)
		require.Len(t, sinks, 1)
		assert.IsType(t, &storage.LocalExporter{}, sinks[0])
	})

	t.Run("with S3", func(t *testing.T) {
		cfg := config.ExportConfig{
			Enabled:         true,
			Bucket:          "exports",
			Region:          "eu-west-2",
			Endpoint:        "http://127.0.0.1:9000",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			UsePathStyle:    true,
		}
		sinks, err := exportSinks(context.Background(), cfg, t.TempDir(), zap.NewNop())
		require.NoError(t, err)
		require.Len(t, sinks, 2)
		assert.IsType(t, &storage.S3Exporter{}, sinks[1])
	})

	t.Run("S3 without bucket", func(t *testing.T) {
		_, err := exportSinks(context.Background(), config.ExportConfig{Enabled: true}, t.TempDir(), zap.NewNop())
		assert.ErrorIs(t, err, storage.ErrBucketRequired)
	})
}

func TestRun_RequiresShopify(t *testing.T) {
	err := run(context.Background(), &config.Config{}, "", false, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrShopifyNotConfigured)
}
