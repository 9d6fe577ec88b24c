package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pdfchat/internal/http/middleware"
	"pdfchat/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NO_PDF_LOADED", "AUTH_REQUIRED")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// serviceErrors maps service sentinels to responses. Order matters: the first match wins.
var serviceErrors = []errorMapping{
	{service.ErrUserExists, fiber.StatusConflict, "USER_EXISTS", "username or email already exists"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password"},
	{service.ErrInvalidPDF, fiber.StatusBadRequest, "INVALID_PDF", "could not read the PDF file"},
	{service.ErrNoText, fiber.StatusBadRequest, "NO_TEXT_EXTRACTED", "could not extract text from PDF"},
	{service.ErrNoDocument, fiber.StatusBadRequest, "NO_PDF_LOADED", "please upload a PDF first"},
	{service.ErrMessageRequired, fiber.StatusBadRequest, "MESSAGE_REQUIRED", "no message provided"},
	{service.ErrInvalidChatType, fiber.StatusBadRequest, "INVALID_CHAT_TYPE", "type must be one of all, pdf_rag, web_search"},
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrEmbeddingFailed, fiber.StatusInternalServerError, "EMBEDDING_FAILED", "failed to generate embeddings"},
	{service.ErrRetrievalFailed, fiber.StatusInternalServerError, "RETRIEVAL_FAILED", "could not retrieve relevant information"},
	{service.ErrCompletionFailed, fiber.StatusInternalServerError, "COMPLETION_FAILED", "error generating response"},
}

// writeServiceError translates a service error into the error envelope.
// Server-side failures are logged with the default logger.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", verr.Message)
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			if m.status >= fiber.StatusInternalServerError {
				logRequestError(c, m.code, err)
			}
			return writeError(c, m.status, m.code, m.message)
		}
	}
	logRequestError(c, "INTERNAL_ERROR", err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func logRequestError(c *fiber.Ctx, code string, err error) {
	slog.Default().Error("request_failed",
		"component", "http",
		"request_id", requestIDFromCtx(c),
		"method", c.Method(),
		"path", c.Path(),
		"code", code,
		"error_message", err.Error(),
	)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			logRequestError(c, "INTERNAL_ERROR", err)
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
