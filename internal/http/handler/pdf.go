package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfchat/internal/model"
	"pdfchat/internal/service"
)

type uploadResponse struct {
	Message  string             `json:"message"`
	Chunks   int                `json:"chunks"`
	Document *model.PDFDocument `json:"document"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// UploadPDF indexes a PDF sent as multipart field "pdf".
//
// @Summary  Upload a PDF
// @Tags     pdf
// @Accept   multipart/form-data
// @Produce  json
// @Param    pdf formData file true "PDF file"
// @Success  200 {object} uploadResponse
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Failure  413 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /api/pdf/upload [post]
func UploadPDF(pdfs service.PDFService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("pdf")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "PDF_REQUIRED", "no PDF file provided")
		}
		if fh.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "PDF_REQUIRED", "no file selected")
		}
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PDF", "only PDF files are allowed")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "PDF_REQUIRED", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "PDF_REQUIRED", "cannot read uploaded file")
		}

		doc, err := pdfs.Upload(c.UserContext(), currentUserID(c), fh.Filename, data)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(uploadResponse{
			Message:  "PDF uploaded and processed successfully",
			Chunks:   doc.ChunksCount,
			Document: doc,
		})
	}
}

// CurrentPDF describes the loaded PDF.
//
// @Summary  Loaded PDF
// @Tags     pdf
// @Produce  json
// @Success  200 {object} service.CurrentPDF
// @Failure  400 {object} errorPayload
// @Router   /api/pdf/current [get]
func CurrentPDF(pdfs service.PDFService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cur, err := pdfs.Current(currentUserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cur)
	}
}

// ChatPDF answers a question from the loaded PDF.
//
// @Summary  Ask the loaded PDF
// @Tags     pdf
// @Accept   json
// @Produce  json
// @Param    body body     messageRequest true "question"
// @Success  200  {object} chatResponse
// @Failure  400  {object} errorPayload
// @Failure  500  {object} errorPayload
// @Router   /api/pdf/chat [post]
func ChatPDF(chats service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req messageRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		answer, err := chats.AskPDF(c.UserContext(), currentUserID(c), req.Message)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(chatResponse{Response: answer})
	}
}
