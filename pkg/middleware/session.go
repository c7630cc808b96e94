package middleware

import (
	"time"

	"finagent/internal/session"
	"finagent/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCookie names the cookie that carries the signed session token.
const SessionCookie = "finagent_session"

const sessionLocal = "session"

// SessionMiddleware resolves the visitor's session from the cookie, creating
// a new one when the cookie is missing, invalid, or names an expired session.
func SessionMiddleware(sessions *session.Manager, tokens *auth.TokenManager, ttl time.Duration, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sess *session.Session

		if cookie := c.Cookies(SessionCookie); cookie != "" {
			claims, err := tokens.Validate(cookie)
			if err != nil {
				logger.Debug("invalid session cookie", zap.Error(err))
			} else if id, err := uuid.Parse(claims.SessionID); err == nil {
				sess, _ = sessions.Get(id)
			}
		}

		if sess == nil {
			sess = sessions.Create()

			token, err := tokens.Generate(sess.ID.String())
			if err != nil {
				logger.Error("failed to sign session token", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Failed to establish session",
				})
			}

			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Expires:  time.Now().Add(ttl),
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}

		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

// SessionFromCtx returns the session resolved by SessionMiddleware.
func SessionFromCtx(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionLocal).(*session.Session)
	return sess
}
