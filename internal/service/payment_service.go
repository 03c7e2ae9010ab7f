package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/gateway"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"
)

// SnapClient is the outbound half of the gateway.
type SnapClient interface {
	CreateTransaction(ctx context.Context, req gateway.SnapRequest) (string, error)
}

type WebhookConfig struct {
	ServerKey       string
	VerifySignature bool
}

type PaymentService interface {
	// CheckoutToken obtains a Snap token for an existing order on behalf of staff.
	CheckoutToken(ctx context.Context, actor auth.Actor, orderID uint) (string, error)
	// InitiateCheckout obtains a Snap token for an order that was just created.
	InitiateCheckout(ctx context.Context, order *model.Order) (string, error)
	// HandleNotification consumes one gateway webhook delivery.
	HandleNotification(ctx context.Context, body []byte) (*model.Order, error)
}

type paymentService struct {
	orders  repository.OrderRepository
	engine  OrderService
	client  SnapClient
	webhook WebhookConfig
	log     *slog.Logger
}

func NewPaymentService(orders repository.OrderRepository, engine OrderService, client SnapClient, webhook WebhookConfig, log *slog.Logger) PaymentService {
	return &paymentService{
		orders:  orders,
		engine:  engine,
		client:  client,
		webhook: webhook,
		log:     log.With("component", "payment_service"),
	}
}

func (s *paymentService) CheckoutToken(ctx context.Context, actor auth.Actor, orderID uint) (string, error) {
	if err := auth.Authorize(actor, auth.OpCheckoutToken); err != nil {
		return "", err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return s.checkout(ctx, order, false)
}

func (s *paymentService) InitiateCheckout(ctx context.Context, order *model.Order) (string, error) {
	return s.checkout(ctx, order, true)
}

// checkout requests a Snap token. Customer checkouts narrow the offered channels to the
// chosen payment method; counter requests let the customer pick any channel.
func (s *paymentService) checkout(ctx context.Context, order *model.Order, narrow bool) (string, error) {
	if order.PaymentStatus != model.PaymentPending || order.Status == model.OrderCancelled {
		return "", fmt.Errorf("%w: order %d is not awaiting payment", ErrInvalidTransition, order.ID)
	}

	token, err := s.client.CreateTransaction(ctx, gateway.NewSnapRequest(order, narrow))
	if err != nil {
		s.log.Error("snap token request failed", "order_id", order.ID, "error", err)
		return "", err
	}
	s.log.Info("snap token issued", "order_id", order.ID, "payment_method", order.PaymentMethod)
	return token, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, body []byte) (*model.Order, error) {
	// 1. Parse
	n, err := gateway.ParseNotification(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// 2. Verify before trusting anything in the payload
	if s.webhook.VerifySignature {
		if err := n.Verify(s.webhook.ServerKey); err != nil {
			s.log.Warn("webhook signature rejected", "order_id", n.OrderID)
			return nil, fmt.Errorf("%w: %v", auth.ErrForbidden, err)
		}
	}

	// 3. Resolve the order
	id, err := strconv.ParseUint(n.OrderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: order %q", ErrNotFound, n.OrderID)
	}

	// 4. Apply or acknowledge
	kind := n.Kind()
	if kind == gateway.EventNone {
		order, err := s.orders.FindByID(ctx, uint(id))
		if err != nil {
			return nil, err
		}
		s.log.Info("webhook status needs no action", "order_id", id, "transaction_status", n.TransactionStatus)
		return order, nil
	}

	order, err := s.engine.ApplyGatewayEvent(ctx, uint(id), kind)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("webhook processing failed", "order_id", id, "error", err)
		}
		return nil, err
	}
	return order, nil
}
