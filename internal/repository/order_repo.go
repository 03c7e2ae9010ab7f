package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"warkop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MutateFunc applies a state change to a locked order. It may change Status,
// PaymentStatus and KasirID on o and returns the payment record to upsert, or nil to
// leave payments alone.
type MutateFunc func(o *model.Order) (*model.Payment, error)

type OrderRepository interface {
	// Create decrements stock for every line and inserts the order with its lines in
	// one transaction. A failed decrement rolls everything back with *StockShortage.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	FindByPhone(ctx context.Context, phone string) ([]model.Order, error)
	FindByIDAndPhone(ctx context.Context, id uint, phone string) (*model.Order, error)
	// Mutate locks the order row, runs fn and persists the result atomically.
	Mutate(ctx context.Context, id uint, fn MutateFunc) (*model.Order, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wanted := make(map[uint]int)
		for _, l := range order.Lines {
			wanted[l.ProductID] += l.Quantity
		}
		// Fixed order keeps concurrent multi-product orders from deadlocking.
		ids := make([]uint, 0, len(wanted))
		for id := range wanted {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			qty := wanted[id]
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", id, qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return &StockShortage{ProductID: id, Requested: qty}
			}
		}

		return tx.Omit("Kasir", "Table", "Payment").Create(order).Error
	})
}

func (r *orderRepo) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Table").Preload("Kasir").Preload("Payment")
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preload(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) FindByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := r.preload(r.db.WithContext(ctx)).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByPhone(ctx context.Context, phone string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND source = ?", phone, model.SourceQRScan).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByIDAndPhone(ctx context.Context, id uint, phone string) (*model.Order, error) {
	var order model.Order
	err := r.preload(r.db.WithContext(ctx)).
		Where("id = ? AND phone_number = ? AND source = ?", id, phone, model.SourceQRScan).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) Mutate(ctx context.Context, id uint, fn MutateFunc) (*model.Order, error) {
	var result *model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if order.TableID != nil {
			var table model.Table
			if err := tx.First(&table, "id = ?", *order.TableID).Error; err == nil {
				order.Table = &table
			}
		}
		var existing model.Payment
		switch err := tx.Where("order_id = ?", id).First(&existing).Error; {
		case err == nil:
			order.Payment = &existing
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		before := order
		payment, err := fn(&order)
		if err != nil {
			return err
		}

		if order.Status != before.Status || order.PaymentStatus != before.PaymentStatus || !sameUser(order.KasirID, before.KasirID) {
			if err := tx.Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
				"status":         order.Status,
				"payment_status": order.PaymentStatus,
				"kasir_id":       order.KasirID,
				"updated_at":     time.Now(),
			}).Error; err != nil {
				return err
			}
		}

		if payment != nil {
			payment.OrderID = id
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"method", "amount", "status", "updated_at"}),
			}).Create(payment).Error; err != nil {
				return err
			}
			order.Payment = payment
		}

		result = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func sameUser(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
