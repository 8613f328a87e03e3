package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Category groups services in the catalog.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Service is a purchasable catalog entry.
type Service struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	ShortDescription string     `json:"short_description,omitempty"`
	Description      string     `json:"description,omitempty"`
	Price            float64    `json:"price"`
	BookingAmount    float64    `json:"booking_amount"`
	CategoryID       int64      `json:"category_id,omitempty"`
	Category         *Category  `json:"category,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// Categories lists the service categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if _, err := c.do(ctx, http.MethodGet, "/services/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Services lists the full catalog.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	if _, err := c.do(ctx, http.MethodGet, "/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// ServiceBySlug fetches a single service detail page payload.
func (c *Client) ServiceBySlug(ctx context.Context, slug string) (*Service, error) {
	service := &Service{}
	if _, err := c.do(ctx, http.MethodGet, "/services/slug/"+url.PathEscape(slug), nil, service); err != nil {
		return nil, err
	}
	return service, nil
}
