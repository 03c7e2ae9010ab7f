package service

import (
	"context"
	"strings"
	"time"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	Daily       []repository.IncomeBucket   `json:"daily"`
	Monthly     []repository.IncomeBucket   `json:"monthly"`
	Yearly      []repository.IncomeBucket   `json:"yearly"`
	Payments    *repository.PaymentCounts   `json:"payments"`
	TopProducts []repository.ProductRanking `json:"top_products"`
}

// ReportQuery selects orders for the report screen. Period is day, month or year and
// Date (YYYY-MM-DD) anchors it; an empty Period means all time.
type ReportQuery struct {
	Status model.OrderStatus
	Period string
	Date   string
	Search string
}

type Report struct {
	Orders []model.Order     `json:"orders"`
	Total  decimal.Decimal   `json:"total"`
	Status model.OrderStatus `json:"status"`
}

type DashboardService interface {
	Stats(ctx context.Context, actor auth.Actor) (*DashboardStats, error)
	OrderReport(ctx context.Context, actor auth.Actor, q ReportQuery) (*Report, error)
}

type dashboardService struct {
	reports repository.ReportRepository
	now     func() time.Time
}

func NewDashboardService(reports repository.ReportRepository) DashboardService {
	return &dashboardService{reports: reports, now: time.Now}
}

func (s *dashboardService) Stats(ctx context.Context, actor auth.Actor) (*DashboardStats, error) {
	if err := auth.Authorize(actor, auth.OpDashboardView); err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		stats DashboardStats
		err   error
	)
	if stats.Daily, err = s.reports.IncomeByDay(ctx, today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if stats.Monthly, err = s.reports.IncomeByMonth(ctx, now.Year()); err != nil {
		return nil, err
	}
	if stats.Yearly, err = s.reports.IncomeByYear(ctx, now.Year()-4, now.Year()); err != nil {
		return nil, err
	}
	if stats.Payments, err = s.reports.PaidCounts(ctx); err != nil {
		return nil, err
	}
	if stats.TopProducts, err = s.reports.TopProducts(ctx, 10); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *dashboardService) OrderReport(ctx context.Context, actor auth.Actor, q ReportQuery) (*Report, error) {
	if err := auth.Authorize(actor, auth.OpDashboardView); err != nil {
		return nil, err
	}

	status := q.Status
	if status == "" {
		status = model.OrderCompleted
	}
	switch status {
	case model.OrderProcessing, model.OrderCompleted, model.OrderCancelled:
	default:
		return nil, invalid("unknown status %q", q.Status)
	}

	filter := repository.OrderReportFilter{Status: status, Search: strings.TrimSpace(q.Search)}
	if q.Period != "" {
		from, to, err := s.periodRange(q.Period, q.Date)
		if err != nil {
			return nil, err
		}
		filter.From, filter.To = from, to
	}

	orders, total, err := s.reports.OrderReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Report{Orders: orders, Total: total, Status: status}, nil
}

func (s *dashboardService) periodRange(period, date string) (time.Time, time.Time, error) {
	anchor := s.now()
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, anchor.Location())
		if err != nil {
			return time.Time{}, time.Time{}, invalid("date must be YYYY-MM-DD")
		}
		anchor = parsed
	}

	switch period {
	case "day":
		from := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
		return from, from.AddDate(0, 0, 1), nil
	case "month":
		from := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return from, from.AddDate(0, 1, 0), nil
	case "year":
		from := time.Date(anchor.Year(), 1, 1, 0, 0, 0, 0, anchor.Location())
		return from, from.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, invalid("period must be day, month or year")
}
