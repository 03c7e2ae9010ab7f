package repository

import (
	"context"
	"time"

	"warkop-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IncomeBucket is one point on an income chart. Key is a date (YYYY-MM-DD), a month
// number or a year depending on the query.
type IncomeBucket struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

type ProductRanking struct {
	ProductName string `json:"product_name"`
	Total       int64  `json:"total"`
}

type PaymentCounts struct {
	Cash    int64 `json:"cash"`
	Gateway int64 `json:"gateway"`
}

type OrderReportFilter struct {
	Status model.OrderStatus
	From   time.Time
	To     time.Time
	Search string
}

type ReportRepository interface {
	IncomeByDay(ctx context.Context, start, end time.Time) ([]IncomeBucket, error)
	IncomeByMonth(ctx context.Context, year int) ([]IncomeBucket, error)
	IncomeByYear(ctx context.Context, fromYear, toYear int) ([]IncomeBucket, error)
	PaidCounts(ctx context.Context) (*PaymentCounts, error)
	TopProducts(ctx context.Context, limit int) ([]ProductRanking, error)
	OrderReport(ctx context.Context, filter OrderReportFilter) ([]model.Order, decimal.Decimal, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) completed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("status = ?", model.OrderCompleted)
}

func (r *reportRepo) income(q *gorm.DB, keyExpr string) ([]IncomeBucket, error) {
	var results []IncomeBucket

	rows, err := q.Select(keyExpr + ` AS bucket, COALESCE(SUM(total_price), 0) AS total`).
		Group("bucket").
		Order("bucket ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b IncomeBucket
		if err := rows.Scan(&b.Key, &b.Total); err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func (r *reportRepo) IncomeByDay(ctx context.Context, start, end time.Time) ([]IncomeBucket, error) {
	q := r.completed(ctx).Where("created_at BETWEEN ? AND ?", start, end)
	return r.income(q, "TO_CHAR(DATE(created_at), 'YYYY-MM-DD')")
}

func (r *reportRepo) IncomeByMonth(ctx context.Context, year int) ([]IncomeBucket, error) {
	q := r.completed(ctx).Where("EXTRACT(YEAR FROM created_at) = ?", year)
	return r.income(q, "LPAD(EXTRACT(MONTH FROM created_at)::text, 2, '0')")
}

func (r *reportRepo) IncomeByYear(ctx context.Context, fromYear, toYear int) ([]IncomeBucket, error) {
	q := r.completed(ctx).Where("EXTRACT(YEAR FROM created_at) BETWEEN ? AND ?", fromYear, toYear)
	return r.income(q, "EXTRACT(YEAR FROM created_at)::text")
}

func (r *reportRepo) PaidCounts(ctx context.Context) (*PaymentCounts, error) {
	var counts PaymentCounts

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Payment{}).
			Joins("JOIN orders ON orders.id = payments.order_id").
			Where("orders.status = ? AND payments.status = ?", model.OrderCompleted, model.PaymentPaid)
	}
	if err := base().Where("payments.method = ?", model.PaymentRecordCash).Count(&counts.Cash).Error; err != nil {
		return nil, err
	}
	if err := base().Where("payments.method = ?", model.PaymentRecordGateway).Count(&counts.Gateway).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, limit int) ([]ProductRanking, error) {
	var ranking []ProductRanking
	err := r.db.WithContext(ctx).Model(&model.OrderLine{}).
		Select("order_lines.product_name, SUM(order_lines.quantity) AS total").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.status = ?", model.OrderCompleted).
		Group("order_lines.product_name").
		Order("total DESC").
		Limit(limit).
		Scan(&ranking).Error
	return ranking, err
}

func (r *reportRepo) OrderReport(ctx context.Context, filter OrderReportFilter) ([]model.Order, decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("status = ?", filter.Status)
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ? AND created_at < ?", filter.From, filter.To)
	}
	if filter.Search != "" {
		q = q.Where("notes ILIKE ? OR CAST(id AS TEXT) LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total decimal.Decimal
	if err := q.Session(&gorm.Session{}).Select("COALESCE(SUM(total_price), 0)").Scan(&total).Error; err != nil {
		return nil, decimal.Zero, err
	}

	var orders []model.Order
	err := q.Session(&gorm.Session{}).
		Preload("Lines").Preload("Table").Preload("Kasir").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, decimal.Zero, err
	}
	return orders, total, nil
}
