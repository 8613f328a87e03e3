package client

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// CartItem is a service parked in the user's cart.
type CartItem struct {
	ID        int64      `json:"id"`
	Service   Service    `json:"service"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// CartItems lists the authenticated user's cart.
func (c *Client) CartItems(ctx context.Context) ([]CartItem, error) {
	var items []CartItem
	if _, err := c.do(ctx, http.MethodGet, "/cart", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart parks a service in the cart.
func (c *Client) AddToCart(ctx context.Context, serviceID int64) error {
	_, err := c.do(ctx, http.MethodPost, "/cart/"+strconv.FormatInt(serviceID, 10), nil, nil)
	return err
}

// RemoveFromCart drops a service from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, serviceID int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/"+strconv.FormatInt(serviceID, 10), nil, nil)
	return err
}
