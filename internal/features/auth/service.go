package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-memo/internal/config"
	"go-memo/internal/features/mailqueue"
	"go-memo/internal/features/user"
	"go-memo/pkg/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// verifyTokenTTL is how long a verification link stays usable
const verifyTokenTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email address not verified")
	ErrTokenInvalid       = errors.New("verification token is invalid or expired")
)

// MailEnqueuer is the slice of the mail queue the auth flow needs
type MailEnqueuer interface {
	Enqueue(ctx context.Context, job mailqueue.EmailJob) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*user.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
	Mail     MailEnqueuer
	BaseURL  string
	Logger   *zap.Logger
}

func NewAuthService(userRepo user.UserRepository, mail MailEnqueuer, cfg *config.Config, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		UserRepo: userRepo,
		Mail:     mail,
		BaseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		Logger:   logger,
	}
}

// Register creates a pending account and queues the verification email.
// A queue failure does not fail registration; the user can ask for a
// resend.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, errors.New("username, email and a password of at least 8 characters are required")
	}

	if _, err := s.UserRepo.FindByEmail(ctx, email); err == nil {
		return nil, errors.New("email already registered")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, err := s.UserRepo.FindByUsername(ctx, username); err == nil {
		return nil, errors.New("username already taken")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expires := now.Add(verifyTokenTTL)
	newUser := &user.User{
		Username:        username,
		Email:           email,
		Password:        string(hashed),
		Status:          user.StatusPending,
		VerifyToken:     uuid.NewString(),
		VerifyExpiresAt: &expires,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	s.queueVerificationEmail(ctx, newUser)
	return newUser, nil
}

func (s *AuthServiceImpl) queueVerificationEmail(ctx context.Context, u *user.User) {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", s.BaseURL, u.VerifyToken)
	job := mailqueue.EmailJob{
		To:      u.Email,
		Subject: "Verify your email address",
		Content: fmt.Sprintf(
			"<p>Hi %s,</p><p>Please confirm your email address by clicking "+
				"<a href=%q>this link</a>. The link expires in 24 hours.</p>",
			u.Username, link),
		UserID: u.ID.Hex(),
	}
	if _, err := s.Mail.Enqueue(ctx, job); err != nil {
		s.Logger.Error("could not queue verification email",
			zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
}

// VerifyEmail activates the account behind a verification token
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenInvalid
	}

	u, err := s.UserRepo.FindByVerifyToken(ctx, token)
	if err != nil {
		return ErrTokenInvalid
	}
	if u.VerifyExpiresAt == nil || time.Now().After(*u.VerifyExpiresAt) {
		return ErrTokenInvalid
	}

	u.Status = user.StatusActive
	u.VerifyToken = ""
	u.VerifyExpiresAt = nil
	return s.UserRepo.Update(ctx, u)
}

// ResendVerification rotates the token and queues a fresh email
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, email string) error {
	u, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrInvalidCredentials
	}
	if u.Status != user.StatusPending {
		return errors.New("account is already verified")
	}

	expires := time.Now().Add(verifyTokenTTL)
	u.VerifyToken = uuid.NewString()
	u.VerifyExpiresAt = &expires
	if err := s.UserRepo.Update(ctx, u); err != nil {
		return err
	}

	s.queueVerificationEmail(ctx, u)
	return nil
}

// Login checks credentials on an active account and issues a JWT
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	switch u.Status {
	case user.StatusPending:
		return "", ErrNotVerified
	case user.StatusSuspended:
		return "", errors.New("account suspended")
	}

	return utils.GenerateToken(u.ID, u.Email)
}
