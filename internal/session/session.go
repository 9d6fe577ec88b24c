// Package session configures cookie sessions for users and the administrator.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"pdfchat/internal/config"
)

// Session keys.
const (
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyAdmin         = "admin"
	KeyAdminUsername = "admin_username"
)

// NewStore returns a cookie session store persisted in storage.
func NewStore(cfg config.SessionConfig, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     time.Duration(cfg.ExpirationMin) * time.Minute,
		Storage:        storage,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}
