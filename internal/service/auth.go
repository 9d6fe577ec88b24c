package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pdfchat/internal/config"
	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// SignupInput is the data needed to register an account.
type SignupInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

// AuthService registers and authenticates users and the administrator.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	// AdminLogin returns ErrInvalidCredentials unless both values match the configured admin.
	AdminLogin(username, password string) error
}

type authService struct {
	users    repository.UserRepository
	admin    config.AdminConfig
	validate *validator.Validate
	hashCost int
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, admin config.AdminConfig) AuthService {
	return &authService{
		users:    users,
		admin:    admin,
		validate: validator.New(),
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationMessage(err)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, invalid("password must be at most %d bytes", maxPasswordBytes)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *authService) AdminLogin(username, password string) error {
	if username == "" || password == "" {
		return invalid("username and password are required")
	}
	if s.admin.Password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password))
	if userOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
