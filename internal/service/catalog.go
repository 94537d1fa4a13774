package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Cache  CatalogCache
	Search ProductSearcher
	Images *util.ImageResolver
}

type ProductQuery struct {
	Query       string
	CategoryIDs []uint
	BrandIDs    []uint
	Page        int
	Size        int
}

func (q ProductQuery) cacheKey() string {
	return fmt.Sprintf("products:q=%s:c=%v:b=%v:p=%d:s=%d",
		strings.ToLower(strings.TrimSpace(q.Query)), q.CategoryIDs, q.BrandIDs, q.Page, q.Size)
}

type ProductPage struct {
	Items []models.ProductListing `json:"items"`
	Meta  util.PageMeta           `json:"meta"`
}

type ProductDetail struct {
	Product       models.ProductListing `json:"product"`
	Sizes         []models.ProductSize  `json:"sizes"`
	Images        []models.ProductImage `json:"images"`
	Reviews       []models.Review       `json:"reviews"`
	AverageRating float64               `json:"average_rating"`
}

// cached serves key from the cache or fills it from load. Cache failures only
// cost a database round trip.
func cached[T any](ctx context.Context, c CatalogCache, key string, load func() (T, error)) (T, error) {
	l := logging.FromContext(ctx)
	if c != nil {
		var v T
		hit, err := c.Get(ctx, key, &v)
		if err != nil {
			l.Warn("cache_get_error", "key", key, "error", err)
		} else if hit {
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if c != nil {
		if err := c.Set(ctx, key, v); err != nil {
			l.Warn("cache_set_error", "key", key, "error", err)
		}
	}
	return v, nil
}

func (s *CatalogService) resolveImages(items []models.ProductListing) {
	for i := range items {
		items[i].MainImage = s.Images.Resolve(items[i].MainImage)
	}
}

// List pages through published products, newest first.
func (s *CatalogService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	q.Page, q.Size = util.Normalize(q.Page, q.Size)

	return cached(ctx, s.Cache, q.cacheKey(), func() (*ProductPage, error) {
		offset, limit := util.Calculate(q.Page, q.Size)
		total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
			Query:       q.Query,
			CategoryIDs: q.CategoryIDs,
			BrandIDs:    q.BrandIDs,
		}, offset, limit)
		if err != nil {
			return nil, err
		}
		s.resolveImages(items)
		return &ProductPage{Items: items, Meta: util.Meta(q.Page, q.Size, total)}, nil
	})
}

// SearchProducts uses the search index when one is configured and falls back
// to substring matching otherwise or when the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	page, size = util.Normalize(page, size)

	if s.Search != nil {
		from, limit := util.Calculate(page, size)
		total, items, err := s.Search.Search(ctx, query, from, limit)
		if err == nil {
			s.resolveImages(items)
			return &ProductPage{Items: items, Meta: util.Meta(page, size, total)}, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}

	return s.List(ctx, ProductQuery{Query: query, Page: page, Size: size})
}

// Get returns a product with sizes, images and reviews. Unpublished products
// are visible to staff only.
func (s *CatalogService) Get(ctx context.Context, id uint, staff bool) (*ProductDetail, error) {
	load := func() (*ProductDetail, error) {
		p, err := s.Repo.GetProductListing(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}

		d := &ProductDetail{Product: *p}
		if d.Sizes, err = s.Repo.ProductSizes(ctx, id); err != nil {
			return nil, err
		}
		if d.Images, err = s.Repo.ProductImages(ctx, id); err != nil {
			return nil, err
		}
		if d.Reviews, err = s.Repo.ReviewsForProduct(ctx, id); err != nil {
			return nil, err
		}

		d.Product.MainImage = s.Images.Resolve(d.Product.MainImage)
		for i := range d.Images {
			d.Images[i].ImageURL = s.Images.Resolve(d.Images[i].ImageURL)
		}
		if n := len(d.Reviews); n > 0 {
			sum := 0
			for _, r := range d.Reviews {
				sum += r.Rating
			}
			d.AverageRating = float64(sum) / float64(n)
		}
		return d, nil
	}

	var (
		d   *ProductDetail
		err error
	)
	if staff {
		d, err = load()
	} else {
		d, err = cached(ctx, s.Cache, fmt.Sprintf("product:%d", id), load)
	}
	if err != nil {
		return nil, err
	}
	if !d.Product.IsPublished && !staff {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return d, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s.Cache, "categories", func() ([]models.Category, error) {
		return s.Repo.Categories(ctx)
	})
}

func (s *CatalogService) Brands(ctx context.Context) ([]models.Brand, error) {
	return cached(ctx, s.Cache, "brands", func() ([]models.Brand, error) {
		return s.Repo.Brands(ctx)
	})
}
