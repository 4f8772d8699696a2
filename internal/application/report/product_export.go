package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// productStatusActive is the storefront status exported by default
const productStatusActive = "active"

// productColumns are the fixed leading columns of the product export
var productColumns = []string{
	"Product ID",
	"Handle",
	"Title",
	"Status",
	"Vendor",
	"Product Type",
	"Tags",
	"Created At",
	"Updated At",
	"Published At",
	"Main Image URL",
	"All Image URLs",
	"Variant Count",
	"First Variant SKU",
	"First Variant Price",
	"First Variant Barcode",
}

// ExportSink stores a finished export and returns where it went
type ExportSink interface {
	Export(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ProductExport is a rendered product CSV
type ProductExport struct {
	Name            string
	Data            []byte
	Products        int
	MetafieldKeys   []string
	MetafieldErrors int
}

// ProductExportService renders the storefront catalog as CSV
type ProductExportService struct {
	commerce integration.CommercePlatform
	opts     serviceOptions
}

// NewProductExportService creates the product export
func NewProductExportService(commerce integration.CommercePlatform, opts ...Option) *ProductExportService {
	return &ProductExportService{commerce: commerce, opts: applyOptions(0, opts)}
}

// ExportFileName returns the default export name for a timestamp
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("shopify_products_%s.csv", t.Format("20060102_150405"))
}

// Build lists active products, optionally with their metafields, and renders
// the CSV. A product whose metafields cannot be read is exported without them.
func (s *ProductExportService) Build(ctx context.Context, includeMetafields bool) (*ProductExport, error) {
	products, err := s.commerce.ListProducts(ctx, productStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	s.opts.logger.Info("Fetched products", zap.Int("count", len(products)))

	export := &ProductExport{Name: ExportFileName(s.opts.now()), Products: len(products)}
	values := make(map[int64]map[string]string, len(products))
	keys := make(map[string]struct{})

	if includeMetafields {
		for i, p := range products {
			fields, err := s.commerce.GetProductMetafields(ctx, p.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				export.MetafieldErrors++
				s.opts.logger.Warn("Failed to fetch metafields",
					zap.Int64("product_id", p.ID),
					zap.Error(err),
				)
				continue
			}
			m := make(map[string]string, len(fields))
			for _, f := range fields {
				k := f.QualifiedKey()
				m[k] = f.Value
				keys[k] = struct{}{}
			}
			values[p.ID] = m
			s.opts.logger.Debug("Fetched metafields",
				zap.Int("index", i+1),
				zap.Int("total", len(products)),
				zap.Int("metafields", len(fields)),
			)
		}
	}

	export.MetafieldKeys = make([]string, 0, len(keys))
	for k := range keys {
		export.MetafieldKeys = append(export.MetafieldKeys, k)
	}
	sort.Strings(export.MetafieldKeys)

	data, err := renderProductCSV(products, export.MetafieldKeys, values)
	if err != nil {
		return nil, err
	}
	export.Data = data
	return export, nil
}

func renderProductCSV(products []integration.Product, metafieldKeys []string, values map[int64]map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(productColumns)+len(metafieldKeys))
	header = append(header, productColumns...)
	header = append(header, metafieldKeys...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range products {
		if err := w.Write(productRow(p, metafieldKeys, values[p.ID])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write product csv: %w", err)
	}
	return buf.Bytes(), nil
}

func productRow(p integration.Product, metafieldKeys []string, fields map[string]string) []string {
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = img.Src
	}
	mainImage := ""
	if len(images) > 0 {
		mainImage = images[0]
	}
	var first integration.ProductVariant
	if len(p.Variants) > 0 {
		first = p.Variants[0]
	}

	row := []string{
		strconv.FormatInt(p.ID, 10),
		p.Handle,
		p.Title,
		p.Status,
		p.Vendor,
		p.ProductType,
		p.Tags,
		p.CreatedAt,
		p.UpdatedAt,
		p.PublishedAt,
		mainImage,
		strings.Join(images, " | "),
		strconv.Itoa(len(p.Variants)),
		first.SKU,
		first.Price,
		first.Barcode,
	}
	for _, k := range metafieldKeys {
		row = append(row, fields[k])
	}
	return row
}

// Publish sends the export to every sink and returns the locations written
func (s *ProductExportService) Publish(ctx context.Context, export *ProductExport, sinks ...ExportSink) ([]string, error) {
	locations := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		loc, err := sink.Export(ctx, export.Name, export.Data, "text/csv")
		if err != nil {
			return locations, fmt.Errorf("failed to publish export: %w", err)
		}
		s.opts.logger.Info("Published product export", zap.String("location", loc))
		locations = append(locations, loc)
	}
	return locations, nil
}
