package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/events"
	"warkop-pos/internal/gateway"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"
)

type OrderLineInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

// CreateOrderInput is a cart. TableID or TableNumber picks the table; neither means
// takeaway. Prices are always taken from the catalog.
type CreateOrderInput struct {
	Lines         []OrderLineInput    `json:"lines" validate:"required,min=1,dive"`
	TableID       *uint               `json:"table_id"`
	TableNumber   string              `json:"table_number" validate:"max=10"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	CustomerName  string              `json:"customer_name" validate:"max=100"`
	Notes         string              `json:"notes" validate:"max=500"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, actor auth.Actor, in CreateOrderInput) (*model.Order, error)
	ConfirmCashPayment(ctx context.Context, actor auth.Actor, id uint, reconfirm bool) (*model.Order, error)
	CompleteOrder(ctx context.Context, actor auth.Actor, id uint) (*model.Order, error)
	ApplyGatewayEvent(ctx context.Context, id uint, kind gateway.EventKind) (*model.Order, error)

	GetOrder(ctx context.Context, actor auth.Actor, id uint) (*model.Order, error)
	ListProcessing(ctx context.Context, actor auth.Actor) ([]model.Order, error)
	CustomerHistory(ctx context.Context, actor auth.Actor) ([]model.Order, error)
	CustomerOrder(ctx context.Context, actor auth.Actor, id uint) (*model.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	tables    repository.TableRepository
	publisher events.Publisher
	log       *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, tables repository.TableRepository, publisher events.Publisher, log *slog.Logger) OrderService {
	return &orderService{
		orders:    orders,
		products:  products,
		tables:    tables,
		publisher: publisher,
		log:       log.With("component", "order_service"),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actor auth.Actor, in CreateOrderInput) (*model.Order, error) {
	// 1. Who is ordering decides the source
	source := model.SourceCounter
	op := auth.OpOrderCreate
	if actor.Role == auth.RoleCustomer {
		source = model.SourceQRScan
		op = auth.OpCustomerCheckout
	}
	if err := auth.Authorize(actor, op); err != nil {
		return nil, err
	}

	// 2. Validate the cart
	if err := validate(&in); err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = model.MethodCash
	}
	if !method.Valid() {
		return nil, invalid("unknown payment method %q", method)
	}

	// 3. Snapshot catalog prices
	lines, err := s.snapshotLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	// 4. Resolve the table
	table, err := s.resolveTable(ctx, in.TableID, in.TableNumber)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		Lines:         lines,
		TotalPrice:    model.LinesTotal(lines),
		Status:        model.OrderProcessing,
		PaymentStatus: model.PaymentPending,
		Source:        source,
		PaymentMethod: method,
		Notes:         in.Notes,
		CustomerName:  in.CustomerName,
	}
	if table != nil {
		order.TableID = &table.ID
	}
	if source == model.SourceQRScan {
		order.PhoneNumber = actor.Phone
		if order.CustomerName == "" {
			order.CustomerName = actor.Name
		}
	} else {
		order.PlacedByID = actor.UserID
		order.KasirID = actor.UserID
	}

	// 5. Decrement stock and insert atomically
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Table = table

	s.log.Info("order created",
		"order_id", order.ID,
		"source", order.Source,
		"payment_method", order.PaymentMethod,
		"total", order.TotalPrice.StringFixed(2),
	)
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

func (s *orderService) snapshotLines(ctx context.Context, in []OrderLineInput) ([]model.OrderLine, error) {
	ids := make([]uint, 0, len(in))
	seen := make(map[uint]bool)
	for _, l := range in {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]model.OrderLine, 0, len(in))
	for _, l := range in {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, l.ProductID)
		}
		lines = append(lines, model.OrderLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
		})
	}
	return lines, nil
}

func (s *orderService) resolveTable(ctx context.Context, id *uint, number string) (*model.Table, error) {
	var (
		table *model.Table
		err   error
	)
	switch {
	case id != nil:
		table, err = s.tables.FindByID(ctx, *id)
	case number != "":
		table, err = s.tables.FindByNumber(ctx, number)
	default:
		return nil, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: table", ErrNotFound)
	}
	return table, err
}

func (s *orderService) ConfirmCashPayment(ctx context.Context, actor auth.Actor, id uint, reconfirm bool) (*model.Order, error) {
	if err := auth.Authorize(actor, auth.OpOrderConfirmCash); err != nil {
		return nil, err
	}

	changed := false
	order, err := s.orders.Mutate(ctx, id, func(o *model.Order) (*model.Payment, error) {
		switch o.PaymentStatus {
		case model.PaymentPaid:
			return nil, nil
		case model.PaymentCancelled:
			return nil, fmt.Errorf("%w: payment of order %d was cancelled", ErrInvalidTransition, o.ID)
		}
		if o.KasirID != nil && *o.KasirID != *actor.UserID && !reconfirm {
			return nil, fmt.Errorf("%w: order %d is already claimed by another cashier", ErrInvalidTransition, o.ID)
		}

		changed = true
		o.PaymentStatus = model.PaymentPaid
		o.KasirID = actor.UserID
		return &model.Payment{
			Method: model.PaymentRecordCash,
			Amount: o.TotalPrice,
			Status: model.PaymentPaid,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("cash payment confirmed", "order_id", id, "kasir_id", actor.UserID)
		s.publish(ctx, events.OrderPaid, order)
	}
	return order, nil
}

func (s *orderService) CompleteOrder(ctx context.Context, actor auth.Actor, id uint) (*model.Order, error) {
	if err := auth.Authorize(actor, auth.OpOrderComplete); err != nil {
		return nil, err
	}

	changed := false
	order, err := s.orders.Mutate(ctx, id, func(o *model.Order) (*model.Payment, error) {
		switch o.Status {
		case model.OrderCompleted:
			return nil, nil
		case model.OrderCancelled:
			return nil, fmt.Errorf("%w: order %d was cancelled", ErrInvalidTransition, o.ID)
		}
		changed = true
		o.Status = model.OrderCompleted
		o.KasirID = actor.UserID
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("order completed", "order_id", id, "kasir_id", actor.UserID)
		s.publish(ctx, events.OrderCompleted, order)
	}
	return order, nil
}

// ApplyGatewayEvent is safe to replay: only a Pending payment moves, and the payment
// record is upserted by order.
func (s *orderService) ApplyGatewayEvent(ctx context.Context, id uint, kind gateway.EventKind) (*model.Order, error) {
	var published string
	order, err := s.orders.Mutate(ctx, id, func(o *model.Order) (*model.Payment, error) {
		if o.PaymentStatus != model.PaymentPending {
			return nil, nil
		}
		switch kind {
		case gateway.EventSettled:
			published = events.OrderPaid
			o.PaymentStatus = model.PaymentPaid
			return &model.Payment{
				Method: model.PaymentRecordGateway,
				Amount: o.TotalPrice,
				Status: model.PaymentPaid,
			}, nil
		case gateway.EventCancelled:
			published = events.OrderCancelled
			o.PaymentStatus = model.PaymentCancelled
			if o.Status == model.OrderProcessing {
				o.Status = model.OrderCancelled
			}
			return &model.Payment{
				Method: model.PaymentRecordGateway,
				Status: model.PaymentCancelled,
			}, nil
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	if published == "" {
		s.log.Debug("gateway event ignored", "order_id", id, "event", kind.String(), "payment_status", order.PaymentStatus)
		return order, nil
	}
	s.log.Info("gateway event applied", "order_id", id, "event", kind.String())
	s.publish(ctx, published, order)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor auth.Actor, id uint) (*model.Order, error) {
	if err := auth.Authorize(actor, auth.OpOrderView); err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

func (s *orderService) ListProcessing(ctx context.Context, actor auth.Actor) ([]model.Order, error) {
	if err := auth.Authorize(actor, auth.OpOrderView); err != nil {
		return nil, err
	}
	return s.orders.FindByStatus(ctx, model.OrderProcessing)
}

func (s *orderService) CustomerHistory(ctx context.Context, actor auth.Actor) ([]model.Order, error) {
	if err := auth.Authorize(actor, auth.OpCustomerHistory); err != nil {
		return nil, err
	}
	return s.orders.FindByPhone(ctx, actor.Phone)
}

func (s *orderService) CustomerOrder(ctx context.Context, actor auth.Actor, id uint) (*model.Order, error) {
	if err := auth.Authorize(actor, auth.OpCustomerHistory); err != nil {
		return nil, err
	}
	return s.orders.FindByIDAndPhone(ctx, id, actor.Phone)
}

func (s *orderService) publish(ctx context.Context, kind string, o *model.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(kind, o)); err != nil {
		s.log.Warn("publish order event failed", "type", kind, "order_id", o.ID, "error", err)
	}
}
