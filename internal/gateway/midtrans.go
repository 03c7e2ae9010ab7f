package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"warkop-pos/internal/model"
)

var ErrGateway = errors.New("payment gateway error")

// Error carries the provider's raw response for support diagnostics.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway: %v", e.Err)
	}
	return fmt.Sprintf("payment gateway: status %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Is(target error) bool { return target == ErrGateway }

func (e *Error) Unwrap() error { return e.Err }

// Message is what the caller shows: the raw provider body when there is one.
func (e *Error) Message() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Error()
}

type Config struct {
	ServerKey string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Phone     string `json:"phone,omitempty"`
	Table     string `json:"table,omitempty"`
}

type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	EnabledPayments    []string           `json:"enabled_payments"`
}

var allPayments = []string{
	"gopay", "qris", "shopeepay", "bank_transfer", "echannel", "bca_klikbca",
	"bca_klikpay", "bri_epay", "cimb_clicks", "danamon_online", "indomaret", "alfamart", "akulaku",
}

// EnabledPayments narrows the Snap channels to the method the customer picked.
func EnabledPayments(m model.PaymentMethod) []string {
	switch m {
	case model.MethodGatewayQRIS:
		return []string{"qris"}
	case model.MethodGatewayVirtualAccount:
		return []string{"bank_transfer", "echannel"}
	case model.MethodGatewayEWallet:
		return []string{"gopay", "shopeepay"}
	default:
		return allPayments
	}
}

// NewSnapRequest builds the Snap payload for an order. Midtrans only takes whole
// rupiah and requires gross_amount to equal the sum of item price*quantity, so each
// unit price is rounded first and the gross is summed from the rounded items.
// With narrow set, enabled_payments follows the order's payment method; otherwise every
// channel is offered.
func NewSnapRequest(o *model.Order, narrow bool) SnapRequest {
	items := make([]ItemDetail, 0, len(o.Lines))
	var gross int64
	for _, l := range o.Lines {
		price := l.UnitPrice.Round(0).IntPart()
		items = append(items, ItemDetail{
			ID:       strconv.FormatUint(uint64(l.ProductID), 10),
			Price:    price,
			Quantity: l.Quantity,
			Name:     truncate(l.ProductName, 50),
		})
		gross += price * int64(l.Quantity)
	}

	name := o.CustomerName
	if name == "" {
		name = "Customer"
	}

	enabled := allPayments
	if narrow {
		enabled = EnabledPayments(o.PaymentMethod)
	}

	return SnapRequest{
		TransactionDetails: TransactionDetails{
			OrderID:     strconv.FormatUint(uint64(o.ID), 10),
			GrossAmount: gross,
		},
		ItemDetails: items,
		CustomerDetails: CustomerDetails{
			FirstName: name,
			Phone:     o.PhoneNumber,
			Table:     o.TableLabel(),
		},
		EnabledPayments: enabled,
	}
}

type snapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransaction obtains a Snap token. Any non-2xx answer, unparsable body, missing
// token or transport failure comes back as *Error.
func (c *Client) CreateTransaction(ctx context.Context, req SnapRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/transactions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.cfg.ServerKey, "")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed snapResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Token == "" {
		return "", &Error{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return parsed.Token, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
