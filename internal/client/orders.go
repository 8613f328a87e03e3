package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Order is a purchased service moving through fulfillment.
type Order struct {
	ID          int64      `json:"id"`
	OrderNumber string     `json:"order_number"`
	Status      string     `json:"status"`
	Service     *Service   `json:"service,omitempty"`
	TotalAmount float64    `json:"total_amount,omitempty"`
	PaidAmount  float64    `json:"paid_amount,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// OrderEvent is one entry in an order's status history.
type OrderEvent struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	Note      string     `json:"note,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// CreateOrder turns a cart service into an order.
func (c *Client) CreateOrder(ctx context.Context, serviceID int64) (*Order, error) {
	order := &Order{}
	if _, err := c.do(ctx, http.MethodPost, "/orders/services/"+strconv.FormatInt(serviceID, 10), nil, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Orders lists the authenticated user's orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if _, err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderByNumber fetches a single order by its public order number.
func (c *Client) OrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	order := &Order{}
	if _, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderNumber), nil, order); err != nil {
		return nil, err
	}
	return order, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order through its lifecycle. Admin only on the
// API side.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*Order, error) {
	order := &Order{}
	path := "/orders/" + strconv.FormatInt(orderID, 10) + "/status"
	if _, err := c.do(ctx, http.MethodPatch, path, updateStatusRequest{Status: status}, order); err != nil {
		return nil, err
	}
	return order, nil
}

// OrderHistory lists the status trail for an order.
func (c *Client) OrderHistory(ctx context.Context, orderID int64) ([]OrderEvent, error) {
	var events []OrderEvent
	path := "/orders/" + strconv.FormatInt(orderID, 10) + "/history"
	if _, err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
