package repository

import (
	"context"

	"warkop-pos/internal/model"

	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	FindAll(ctx context.Context) ([]model.Table, error)
	FindByID(ctx context.Context, id uint) (*model.Table, error)
	FindByNumber(ctx context.Context, number string) (*model.Table, error)
}

type tableRepo struct {
	db *gorm.DB
}

func NewTableRepo(db *gorm.DB) TableRepository {
	return &tableRepo{db}
}

func (r *tableRepo) Create(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepo) FindAll(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := r.db.WithContext(ctx).Order("table_number ASC").Find(&tables).Error
	return tables, err
}

func (r *tableRepo) FindByID(ctx context.Context, id uint) (*model.Table, error) {
	var table model.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (r *tableRepo) FindByNumber(ctx context.Context, number string) (*model.Table, error) {
	var table model.Table
	if err := r.db.WithContext(ctx).First(&table, "table_number = ?", number).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}
