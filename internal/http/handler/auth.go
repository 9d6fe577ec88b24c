package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"pdfchat/internal/http/middleware"
	"pdfchat/internal/service"
	appsession "pdfchat/internal/session"
)

const usernameLocalKey = "username"

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type authResponse struct {
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

type authStatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *userSummary `json:"user,omitempty"`
}

type adminStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func sessionString(sess *session.Session, key string) string {
	s, _ := sess.Get(key).(string)
	return s
}

// startUserSession rotates the session ID and stores the signed-in user.
func startUserSession(c *fiber.Ctx, store *session.Store, id, username string) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(appsession.KeyUserID, id)
	sess.Set(appsession.KeyUsername, username)
	return sess.Save()
}

// currentUserID returns the ID stored by RequireAuth.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.UserIDLocalKey).(string)
	return id
}

// RequireAuth rejects requests without a signed-in user with 401 AUTH_REQUIRED.
func RequireAuth(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		id := sessionString(sess, appsession.KeyUserID)
		if id == "" {
			return writeError(c, fiber.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
		}
		c.Locals(middleware.UserIDLocalKey, id)
		c.Locals(usernameLocalKey, sessionString(sess, appsession.KeyUsername))
		return c.Next()
	}
}

// RequireAdmin rejects requests without an admin session with 403 ADMIN_REQUIRED.
func RequireAdmin(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if ok, _ := sess.Get(appsession.KeyAdmin).(bool); !ok {
			return writeError(c, fiber.StatusForbidden, "ADMIN_REQUIRED", "admin access required")
		}
		return c.Next()
	}
}

// Signup registers an account and signs it in.
//
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body     signupRequest true "account"
// @Success  201  {object} authResponse
// @Failure  400  {object} errorPayload
// @Failure  409  {object} errorPayload
// @Router   /api/auth/signup [post]
func Signup(auth service.AuthService, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		u, err := auth.Signup(c.UserContext(), service.SignupInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		if err := startUserSession(c, store, u.ID, u.Username); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(authResponse{
			Message: "Signup successful",
			User:    userSummary{ID: u.ID, Username: u.Username},
		})
	}
}

// Login signs a user in.
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body     credentialsRequest true "credentials"
// @Success  200  {object} authResponse
// @Failure  401  {object} errorPayload
// @Router   /api/auth/login [post]
func Login(auth service.AuthService, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		u, err := auth.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}

		if err := startUserSession(c, store, u.ID, u.Username); err != nil {
			return err
		}
		return c.JSON(authResponse{
			Message: "Login successful",
			User:    userSummary{ID: u.ID, Username: u.Username},
		})
	}
}

// Logout ends the session and unloads the user's PDF.
//
// @Summary  Log out
// @Tags     auth
// @Produce  json
// @Success  200 {object} messageResponse
// @Router   /api/auth/logout [post]
func Logout(pdfs service.PDFService, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if id := sessionString(sess, appsession.KeyUserID); id != "" {
			pdfs.Release(id)
		}
		if err := sess.Destroy(); err != nil {
			return err
		}
		return c.JSON(messageResponse{Message: "Logout successful"})
	}
}

// AuthStatus reports whether the caller is signed in.
//
// @Summary  Session status
// @Tags     auth
// @Produce  json
// @Success  200 {object} authStatusResponse
// @Router   /api/auth/status [get]
func AuthStatus(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		id := sessionString(sess, appsession.KeyUserID)
		if id == "" {
			return c.JSON(authStatusResponse{Authenticated: false})
		}
		return c.JSON(authStatusResponse{
			Authenticated: true,
			User:          &userSummary{ID: id, Username: sessionString(sess, appsession.KeyUsername)},
		})
	}
}

// AdminLogin grants the session admin rights.
//
// @Summary  Admin log in
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body body     credentialsRequest true "credentials"
// @Success  200  {object} messageResponse
// @Failure  401  {object} errorPayload
// @Router   /api/admin/login [post]
func AdminLogin(auth service.AuthService, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		if err := auth.AdminLogin(req.Username, req.Password); err != nil {
			return writeServiceError(c, err)
		}

		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if err := sess.Regenerate(); err != nil {
			return err
		}
		sess.Set(appsession.KeyAdmin, true)
		sess.Set(appsession.KeyAdminUsername, req.Username)
		if err := sess.Save(); err != nil {
			return err
		}
		return c.JSON(messageResponse{Message: "Admin login successful"})
	}
}

// AdminLogout drops admin rights but keeps any user sign-in.
//
// @Summary  Admin log out
// @Tags     admin
// @Produce  json
// @Success  200 {object} messageResponse
// @Router   /api/admin/logout [post]
func AdminLogout(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Delete(appsession.KeyAdmin)
		sess.Delete(appsession.KeyAdminUsername)
		if err := sess.Save(); err != nil {
			return err
		}
		return c.JSON(messageResponse{Message: "Admin logout successful"})
	}
}

// AdminStatus reports whether the caller holds admin rights.
//
// @Summary  Admin session status
// @Tags     admin
// @Produce  json
// @Success  200 {object} adminStatusResponse
// @Router   /api/admin/status [get]
func AdminStatus(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if ok, _ := sess.Get(appsession.KeyAdmin).(bool); !ok {
			return c.JSON(adminStatusResponse{Authenticated: false})
		}
		return c.JSON(adminStatusResponse{
			Authenticated: true,
			Username:      sessionString(sess, appsession.KeyAdminUsername),
		})
	}
}
