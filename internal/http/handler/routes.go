package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"pdfchat/internal/service"
)

// Dependencies are the collaborators the HTTP routes need.
type Dependencies struct {
	DB       *sql.DB
	Sessions *session.Store
	Auth     service.AuthService
	PDF      service.PDFService
	Chat     service.ChatService
	Admin    service.AdminService
}

// RegisterRoutes attaches the health and API routes to app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", Signup(d.Auth, d.Sessions))
	auth.Post("/login", Login(d.Auth, d.Sessions))
	auth.Post("/logout", Logout(d.PDF, d.Sessions))
	auth.Get("/status", AuthStatus(d.Sessions))

	requireUser := RequireAuth(d.Sessions)
	api.Post("/pdf/upload", requireUser, UploadPDF(d.PDF))
	api.Get("/pdf/current", requireUser, CurrentPDF(d.PDF))
	api.Post("/pdf/chat", requireUser, ChatPDF(d.Chat))
	api.Post("/websearch/chat", requireUser, WebSearchChat(d.Chat))
	api.Get("/chats/history", requireUser, ChatHistory(d.Chat))

	admin := api.Group("/admin")
	admin.Post("/login", AdminLogin(d.Auth, d.Sessions))
	admin.Post("/logout", AdminLogout(d.Sessions))
	admin.Get("/status", AdminStatus(d.Sessions))

	requireAdmin := RequireAdmin(d.Sessions)
	admin.Get("/users", requireAdmin, ListUsers(d.Admin))
	admin.Get("/users/:id/pdfs", requireAdmin, UserPDFs(d.Admin))
	admin.Get("/users/:id/chats", requireAdmin, UserChats(d.Admin))
}
