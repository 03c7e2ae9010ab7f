package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	Image       string          `json:"image" validate:"max=255"`
	Category    string          `json:"category" validate:"required,max=50"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

type Catalog struct {
	Products   []model.Product `json:"products"`
	Categories []string        `json:"categories"`
}

type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) (*Catalog, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, actor auth.Actor, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, actor auth.Actor, id uint, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
}

type productService struct {
	repo repository.ProductRepository
	log  *slog.Logger
}

func NewProductService(repo repository.ProductRepository, log *slog.Logger) ProductService {
	return &productService{repo: repo, log: log.With("component", "product_service")}
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) (*Catalog, error) {
	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return &Catalog{Products: products, Categories: categories}, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, actor auth.Actor, in ProductInput) (*model.Product, error) {
	if err := auth.Authorize(actor, auth.OpProductManage); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	p := &model.Product{}
	apply(p, in)
	p.CreatedBy = actor.UserID.String()
	p.UpdatedBy = p.CreatedBy

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", "product_id", p.ID, "by", actor.Name)
	return p, nil
}

func (s *productService) Update(ctx context.Context, actor auth.Actor, id uint, in ProductInput) (*model.Product, error) {
	if err := auth.Authorize(actor, auth.OpProductManage); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStock := p.Stock
	apply(p, in)
	p.UpdatedBy = actor.UserID.String()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.log.Info("product updated", "product_id", p.ID, "old_stock", oldStock, "new_stock", p.Stock, "by", actor.Name)
	return p, nil
}

// Delete is a soft delete; order lines keep their snapshot.
func (s *productService) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := auth.Authorize(actor, auth.OpProductManage); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, actor.UserID.String()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.Info("product deleted", "product_id", id, "by", actor.Name)
	return nil
}

func apply(p *model.Product, in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Image = in.Image
	p.Category = in.Category
	p.Stock = in.Stock
}
