package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"toeic-web/internal/apierr"
	"toeic-web/internal/auth"
	"toeic-web/internal/database"
	"toeic-web/internal/ids"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

const minPasswordLength = 6

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type accountService struct {
	store  *store.Store
	tokens *auth.Tokens
	log    *logger.Logger
	now    func() time.Time
}

func NewAccountService(st *store.Store, tokens *auth.Tokens, log *logger.Logger) AccountService {
	return &accountService{store: st, tokens: tokens, log: log.With("service", "AccountService"), now: utcNow}
}

// Register always creates a learner. Admins are provisioned out of band.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, apierr.Validation("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apierr.Validation("password must be at least %d characters", minPasswordLength)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apierr.Internal("failed to hash password", err)
	}

	var user *models.User
	err = retryOnDuplicate(ctx, s.log, "register user", func() error {
		return s.store.Tx(ctx, func(tx *gorm.DB) error {
			if _, err := s.store.Users.GetByEmail(ctx, tx, email); err == nil {
				return apierr.Conflict("email %s is already registered", email)
			} else if !store.IsNotFound(err) {
				return err
			}
			last, err := s.store.Users.LastID(ctx, tx, ids.PrefixUser)
			if err != nil {
				return err
			}
			user = &models.User{
				ID:           ids.Next(last, ids.PrefixUser),
				Email:        email,
				PasswordHash: hash,
				Name:         strings.TrimSpace(in.Name),
				Role:         models.RoleLearner,
				RegisteredAt: s.now(),
			}
			return s.store.Users.Create(ctx, tx, user)
		})
	})
	if err != nil {
		if database.IsDuplicate(err) || apierr.Is(err, apierr.KindConflict) {
			return nil, apierr.Conflict("email %s is already registered", email)
		}
		return nil, outcome("failed to register user", err)
	}
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *accountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.store.Users.GetByEmail(ctx, nil, email)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.Unauthorized("invalid email or password")
		}
		return nil, apierr.Internal("failed to load user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, apierr.Unauthorized("invalid email or password")
	}
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apierr.Internal("failed to create token", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *accountService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, nil, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("user %s not found", userID)
		}
		return nil, apierr.Internal("failed to load user", err)
	}
	return user, nil
}
