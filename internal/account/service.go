// Package account implements registration, authentication and lookup of
// marketplace users.
package account

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/apperr"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/session"
	"github.com/hongminglow/campus-market/internal/storage"
)

// Caller-facing messages.
const (
	MsgCredentialsRequired = "Username and password are required."
	MsgInvalidEmail        = "Email must be a valid @" + InstitutionalDomain + " address."
	MsgTaken               = "Username or email already taken."
	MsgUserNotFound        = "User not found."
	MsgIncorrectPassword   = "Incorrect password."
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// SessionIssuer establishes an authenticated session for a user.
type SessionIssuer interface {
	Create(ctx context.Context, userID int64) (session.Session, error)
}

// Service owns the User invariants.
type Service struct {
	users    storage.UserStore
	hasher   Hasher
	sessions SessionIssuer
	log      *zap.Logger
}

// NewService constructs the account service.
func NewService(users storage.UserStore, hasher Hasher, sessions SessionIssuer, log *zap.Logger) *Service {
	return &Service{users: users, hasher: hasher, sessions: sessions, log: log.Named("account")}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Phone    string
}

// Register creates an account and logs the caller in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, session.Session, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || in.Password == "" {
		return models.User{}, session.Session{}, apperr.Validation(MsgCredentialsRequired)
	}
	if !IsInstitutionalEmail(email) {
		return models.User{}, session.Session{}, apperr.Validation(MsgInvalidEmail)
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return models.User{}, session.Session{}, s.internal("check uniqueness", err)
	}
	if taken {
		return models.User{}, session.Session{}, apperr.Conflict(MsgTaken)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, session.Session{}, s.internal("hash password", err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	})
	if err != nil {
		// a concurrent registration can win between the check and the insert
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, session.Session{}, apperr.Conflict(MsgTaken)
		}
		return models.User{}, session.Session{}, s.internal("create user", err)
	}

	sess, err := s.sessions.Create(ctx, created.ID)
	if err != nil {
		return models.User{}, session.Session{}, s.internal("create session", err)
	}
	s.log.Info("user registered", zap.Int64("user_id", created.ID), zap.String("username", created.Username))
	return created.Public(), sess, nil
}

// Authenticate checks credentials and opens a session.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.User, session.Session, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, session.Session{}, apperr.NotFound(MsgUserNotFound)
		}
		return models.User{}, session.Session{}, s.internal("find user", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, session.Session{}, apperr.Auth(MsgIncorrectPassword)
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return models.User{}, session.Session{}, s.internal("create session", err)
	}
	s.log.Info("user logged in", zap.Int64("user_id", user.ID))
	return user.Public(), sess, nil
}

// GetByID returns the public fields of one user.
func (s *Service) GetByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.NotFound(MsgUserNotFound)
		}
		return models.User{}, s.internal("find user", err)
	}
	return user.Public(), nil
}

// ListAll returns every user, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, s.internal("list users", err)
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

func (s *Service) internal(op string, err error) error {
	s.log.Error(op+" failed", zap.Error(err))
	return apperr.Internal(err)
}
