package client

import (
	"context"
	"net/http"

	"github.com/protacc/storefront/internal/session"
)

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*session.User, error) {
	user := &session.User{}
	if _, err := c.do(ctx, http.MethodGet, "/user/profile", nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AdminUsers lists every registered user. Admin only on the API side.
func (c *Client) AdminUsers(ctx context.Context) ([]session.User, error) {
	var users []session.User
	if _, err := c.do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
