// Package catalog manages the menu. Reads go through an optional cache that
// every write invalidates.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"tableorder/internal/cache"
	"tableorder/internal/domain"
	"tableorder/internal/logging"
	"tableorder/internal/storage"
)

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   productRepo
	cache  cache.Catalog
	images storage.ImageStore
	logger *zap.Logger
}

func New(repo productRepo, c cache.Catalog, images storage.ImageStore, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{repo: repo, cache: c, images: images, logger: logging.OrNop(logger).Named("catalog")}
}

// Input carries the editable product fields.
type Input struct {
	Name        string
	PriceCents  int64
	Category    string
	Description string
	SpecialTag  string
	ImageURL    string
	IsAvailable bool
}

// Image is an uploaded picture for a new product.
type Image struct {
	Filename string
	Body     io.Reader
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	if products, ok := s.cache.Get(ctx); ok {
		return products, nil
	}
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, products)
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the image first and then the product referencing it. The
// image is removed again when the product cannot be stored.
func (s *Service) Create(ctx context.Context, in Input, img *Image) (*domain.Product, error) {
	if img == nil || img.Body == nil {
		return nil, fmt.Errorf("%w: image file required", domain.ErrInvalidInput)
	}
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, fmt.Errorf("image storage unavailable")
	}
	url, err := s.images.Save(ctx, img.Filename, img.Body)
	if err != nil {
		return nil, err
	}
	p.ImageURL = url
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if derr := s.images.Delete(ctx, url); derr != nil {
			s.logger.Warn("remove orphaned image", zap.String("url", url), zap.Error(derr))
		}
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("product created", zap.Int64("product_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Update replaces every editable field of an existing product.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	p, err := productFromInput(in)
	if err != nil {
		return err
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Delete removes a product. Products referenced by order items are kept and
// the call fails with domain.ErrInvalidReference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func productFromInput(in Input) (domain.Product, error) {
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		PriceCents:  in.PriceCents,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		SpecialTag:  strings.TrimSpace(in.SpecialTag),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsAvailable: in.IsAvailable,
	}
	switch {
	case p.Name == "":
		return p, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	case len(p.Name) > domain.MaxProductNameLen:
		return p, fmt.Errorf("%w: name longer than %d", domain.ErrInvalidInput, domain.MaxProductNameLen)
	case p.PriceCents < 0:
		return p, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	case len(p.Category) > domain.MaxProductCategoryLen:
		return p, fmt.Errorf("%w: category longer than %d", domain.ErrInvalidInput, domain.MaxProductCategoryLen)
	case len(p.Description) > domain.MaxProductDescriptionLen:
		return p, fmt.Errorf("%w: description longer than %d", domain.ErrInvalidInput, domain.MaxProductDescriptionLen)
	case len(p.SpecialTag) > domain.MaxProductTagLen:
		return p, fmt.Errorf("%w: special tag longer than %d", domain.ErrInvalidInput, domain.MaxProductTagLen)
	case len(p.ImageURL) > domain.MaxProductImageLen:
		return p, fmt.Errorf("%w: image url longer than %d", domain.ErrInvalidInput, domain.MaxProductImageLen)
	}
	return p, nil
}
