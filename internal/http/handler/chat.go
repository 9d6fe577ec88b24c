package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfchat/internal/model"
	"pdfchat/internal/service"
)

type chatsResponse struct {
	Chats []model.ChatRecord `json:"chats"`
}

// WebSearchChat answers a question from web search results.
//
// @Summary  Ask the web
// @Tags     websearch
// @Accept   json
// @Produce  json
// @Param    body body     messageRequest true "question"
// @Success  200  {object} chatResponse
// @Failure  400  {object} errorPayload
// @Failure  500  {object} errorPayload
// @Router   /api/websearch/chat [post]
func WebSearchChat(chats service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req messageRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		answer, err := chats.AskWeb(c.UserContext(), currentUserID(c), req.Message)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(chatResponse{Response: answer})
	}
}

// ChatHistory lists the caller's recent chats.
//
// @Summary  Chat history
// @Tags     chats
// @Produce  json
// @Param    type query    string false "all, pdf_rag or web_search" default(all)
// @Success  200  {object} chatsResponse
// @Failure  400  {object} errorPayload
// @Router   /api/chats/history [get]
func ChatHistory(chats service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := chats.History(c.UserContext(), currentUserID(c), c.Query("type", service.ChatFilterAll))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(chatsResponse{Chats: nonNil(recs)})
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
