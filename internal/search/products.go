package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"

	"github.com/Skotchmaster/storefront/internal/models"
)

const productMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "long"},
      "name":          {"type": "text"},
      "description":   {"type": "text"},
      "price":         {"type": "keyword"},
      "stock":         {"type": "integer"},
      "is_published":  {"type": "boolean"},
      "category_id":   {"type": "long"},
      "brand_id":      {"type": "long"},
      "category_name": {"type": "keyword"},
      "brand_name":    {"type": "keyword"},
      "image_url":     {"type": "keyword", "index": false},
      "created_at":    {"type": "date"}
    }
  }
}`

// Products is the product index. Documents are product listings as served by
// the catalog.
type Products struct {
	ES    *elasticsearch.Client
	Index string
}

func responseError(op string, status string, body io.Reader) error {
	b, _ := io.ReadAll(body)
	return fmt.Errorf("elasticsearch: %s: %s: %s", op, status, strings.TrimSpace(string(b)))
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (p *Products) EnsureIndex(ctx context.Context) error {
	res, err := p.ES.Indices.Exists([]string{p.Index}, p.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch: exists: %s", res.Status())
	}

	res, err = p.ES.Indices.Create(p.Index,
		p.ES.Indices.Create.WithContext(ctx),
		p.ES.Indices.Create.WithBody(strings.NewReader(productMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

func (p *Products) Search(ctx context.Context, query string, from, size int) (int64, []models.ProductListing, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_published": true},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := p.ES.Search(
		p.ES.Search.WithContext(ctx),
		p.ES.Search.WithIndex(p.Index),
		p.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.ProductListing `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode: %w", err)
	}

	items := make([]models.ProductListing, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}

// BulkIndex bulk-indexes the listings and returns how many were accepted.
func (p *Products) BulkIndex(ctx context.Context, items []models.ProductListing) (int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: p.ES,
		Index:  p.Index,
	})
	if err != nil {
		return 0, fmt.Errorf("elasticsearch: bulk indexer: %w", err)
	}

	for _, it := range items {
		doc, err := json.Marshal(it)
		if err != nil {
			return 0, fmt.Errorf("elasticsearch: encode product %d: %w", it.ID, err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatUint(uint64(it.ID), 10),
			Body:       bytes.NewReader(doc),
		})
		if err != nil {
			_ = bi.Close(ctx)
			return 0, fmt.Errorf("elasticsearch: add product %d: %w", it.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, fmt.Errorf("elasticsearch: flush: %w", err)
	}
	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return int(stats.NumIndexed), fmt.Errorf("elasticsearch: %d of %d documents failed", stats.NumFailed, len(items))
	}
	return int(stats.NumIndexed), nil
}
