package session

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/protacc/storefront/internal/pkg/logging"
)

const (
	// DefaultTokenKey is the cookie holding the bearer credential.
	DefaultTokenKey = "auth_token"
	// DefaultUserKey is the cookie holding the serialized user profile.
	DefaultUserKey = "auth_user"
)

// Store persists the two durable session keys on the client.
type Store interface {
	Read(c *fiber.Ctx) *Session
	WriteToken(c *fiber.Ctx, token string)
	WriteUser(c *fiber.Ctx, user *User) error
	// Persist writes user then token in that fixed order, so a partial
	// failure always reads back as not yet authenticated.
	Persist(c *fiber.Ctx, token string, user *User) error
	Clear(c *fiber.Ctx)
}

var _ Store = (*CookieStore)(nil)

// CookieStore keeps the token and user profile in two HTTP cookies, the
// browser-scoped storage of this app.
type CookieStore struct {
	TokenKey string
	UserKey  string
	TTL      time.Duration
	Secure   bool
	Logger   logging.Logger
}

// NewCookieStore returns a store with the default cookie names.
func NewCookieStore(ttl time.Duration, logger logging.Logger) *CookieStore {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CookieStore{
		TokenKey: DefaultTokenKey,
		UserKey:  DefaultUserKey,
		TTL:      ttl,
		Secure:   true,
		Logger:   logger,
	}
}

// Read hydrates a session snapshot from the request cookies. A user record
// that fails to decode is treated as absent, never as a fatal error, and a
// bearer token that carries an already expired JWT claim set is dropped.
func (s *CookieStore) Read(c *fiber.Ctx) *Session {
	token := c.Cookies(s.TokenKey)
	if token != "" && tokenExpired(token) {
		s.Logger.Debug("dropping expired bearer token from session read")
		token = ""
	}

	var user *User
	if raw := c.Cookies(s.UserKey); raw != "" {
		decoded, err := decodeUser(raw)
		if err != nil {
			s.Logger.Warn("unreadable user cookie, treating as absent", "error", err)
		} else {
			user = decoded
		}
	}

	return Hydrate(token, user)
}

func (s *CookieStore) WriteToken(c *fiber.Ctx, token string) {
	s.set(c, s.TokenKey, token)
}

func (s *CookieStore) WriteUser(c *fiber.Ctx, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.set(c, s.UserKey, base64.URLEncoding.EncodeToString(raw))
	return nil
}

func (s *CookieStore) Persist(c *fiber.Ctx, token string, user *User) error {
	if err := s.WriteUser(c, user); err != nil {
		return err
	}
	s.WriteToken(c, token)
	return nil
}

// Clear expires both cookies. It never errors.
func (s *CookieStore) Clear(c *fiber.Ctx) {
	s.del(c, s.TokenKey)
	s.del(c, s.UserKey)
}

func (s *CookieStore) set(c *fiber.Ctx, name, val string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    val,
		Expires:  time.Now().Add(s.TTL),
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: "Lax",
	})
}

func (s *CookieStore) del(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: "Lax",
	})
}

func decodeUser(raw string) (*User, error) {
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	user := &User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, err
	}
	return user, nil
}

// tokenExpired peeks at the bearer token without verifying its signature;
// verification belongs to the API. An opaque, non-JWT token is kept as is.
func tokenExpired(raw string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
