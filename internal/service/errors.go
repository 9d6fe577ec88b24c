package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"pdfchat/internal/pdftext"
	"pdfchat/internal/rag"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMessageRequired    = errors.New("message is required")
	ErrInvalidChatType    = errors.New("invalid chat type")
	ErrEmbeddingFailed    = errors.New("embedding failed")
	ErrRetrievalFailed    = errors.New("could not retrieve relevant information")
	ErrCompletionFailed   = errors.New("completion failed")

	ErrInvalidPDF = pdftext.ErrInvalidPDF
	ErrNoText     = pdftext.ErrNoText
	ErrNoDocument = rag.ErrNoDocument
)

// ValidationError carries a message safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// validationMessage turns validator errors into one readable sentence per field.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return &ValidationError{Message: strings.Join(msgs, "; ")}
}
