package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pdfchat/internal/model"
	"pdfchat/internal/service"
)

type usersResponse struct {
	Users []model.User `json:"users"`
}

type pdfsResponse struct {
	PDFs []service.AdminPDF `json:"pdfs"`
}

func userIDParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ListUsers lists every account, newest first.
//
// @Summary  List users
// @Tags     admin
// @Produce  json
// @Success  200 {object} usersResponse
// @Failure  403 {object} errorPayload
// @Router   /api/admin/users [get]
func ListUsers(admin service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := admin.ListUsers(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(usersResponse{Users: nonNil(users)})
	}
}

// UserPDFs lists a user's uploads with download links when archived.
//
// @Summary  List a user's PDFs
// @Tags     admin
// @Produce  json
// @Param    id  path     string true "user ID"
// @Success  200 {object} pdfsResponse
// @Failure  400 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Router   /api/admin/users/{id}/pdfs [get]
func UserPDFs(admin service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := userIDParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		pdfs, err := admin.UserPDFs(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(pdfsResponse{PDFs: nonNil(pdfs)})
	}
}

// UserChats lists all chats of a user.
//
// @Summary  List a user's chats
// @Tags     admin
// @Produce  json
// @Param    id  path     string true "user ID"
// @Success  200 {object} chatsResponse
// @Failure  400 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Router   /api/admin/users/{id}/chats [get]
func UserChats(admin service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := userIDParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		recs, err := admin.UserChats(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(chatsResponse{Chats: nonNil(recs)})
	}
}
