package service

import (
	"context"
	"errors"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"
)

type TableInput struct {
	TableNumber string `json:"table_number" validate:"required,max=10"`
	QRCode      string `json:"qr_code" validate:"max=255"`
}

type TableService interface {
	List(ctx context.Context) ([]model.Table, error)
	Create(ctx context.Context, actor auth.Actor, in TableInput) (*model.Table, error)
}

type tableService struct {
	repo repository.TableRepository
}

func NewTableService(repo repository.TableRepository) TableService {
	return &tableService{repo: repo}
}

func (s *tableService) List(ctx context.Context) ([]model.Table, error) {
	return s.repo.FindAll(ctx)
}

func (s *tableService) Create(ctx context.Context, actor auth.Actor, in TableInput) (*model.Table, error) {
	if err := auth.Authorize(actor, auth.OpTableManage); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByNumber(ctx, in.TableNumber)
	switch {
	case err == nil && existing != nil:
		return nil, invalid("table number %s already exists", in.TableNumber)
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, err
	}

	t := &model.Table{TableNumber: in.TableNumber, QRCode: in.QRCode}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
