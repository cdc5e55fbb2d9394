package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-memo/internal/features/mailqueue"
	"go-memo/internal/features/user"
	"go-memo/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[string]*user.User // keyed by id hex
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	dup := *u
	r.users[u.ID.Hex()] = &dup
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	dup := *u
	return &dup, nil
}

func (r *fakeUserRepo) findWhere(match func(*user.User) bool) (*user.User, error) {
	for _, u := range r.users {
		if match(u) {
			dup := *u
			return &dup, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findWhere(func(u *user.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findWhere(func(u *user.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByVerifyToken(ctx context.Context, token string) (*user.User, error) {
	return r.findWhere(func(u *user.User) bool { return u.VerifyToken != "" && u.VerifyToken == token })
}

func (r *fakeUserRepo) FindActive(ctx context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if u.Status == user.StatusActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	dup := *u
	r.users[u.ID.Hex()] = &dup
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

// fakeMail captures queued jobs; err makes every enqueue fail
type fakeMail struct {
	jobs []mailqueue.EmailJob
	err  error
}

func (m *fakeMail) Enqueue(ctx context.Context, job mailqueue.EmailJob) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.jobs = append(m.jobs, job)
	return "job-1", nil
}

func newTestService(repo user.UserRepository, mail MailEnqueuer) *AuthServiceImpl {
	return &AuthServiceImpl{
		UserRepo: repo,
		Mail:     mail,
		BaseURL:  "http://localhost:8080",
		Logger:   zap.NewNop(),
	}
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	utils.SetSecret("test-secret")
	repo := newFakeUserRepo()
	mail := &fakeMail{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Status != user.StatusPending {
		t.Errorf("status = %q, want %q", u.Status, user.StatusPending)
	}
	if u.Password == "password123" {
		t.Error("password stored in plaintext")
	}
	if u.VerifyToken == "" || u.VerifyExpiresAt == nil {
		t.Fatal("verification token not issued")
	}

	if len(mail.jobs) != 1 {
		t.Fatalf("queued %d emails, want 1", len(mail.jobs))
	}
	if mail.jobs[0].To != "alice@example.com" {
		t.Errorf("verification email to %q", mail.jobs[0].To)
	}
	if !strings.Contains(mail.jobs[0].Content, u.VerifyToken) {
		t.Error("verification email does not carry the token")
	}

	// login before verification is refused
	if _, err := svc.Login(ctx, "alice@example.com", "password123"); !errors.Is(err, ErrNotVerified) {
		t.Errorf("pre-verification Login() error = %v, want ErrNotVerified", err)
	}

	if err := svc.VerifyEmail(ctx, u.VerifyToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	activated, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if activated.Status != user.StatusActive {
		t.Errorf("status after verify = %q, want %q", activated.Status, user.StatusActive)
	}
	if activated.VerifyToken != "" {
		t.Error("verification token not cleared")
	}

	token, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("token email = %q", claims.Email)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), &fakeMail{})
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@b.com", "password123"},
		{"empty email", "alice", "", "password123"},
		{"short password", "alice", "a@b.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.username, tt.email, tt.password); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMail{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Register(ctx, "alice2", "alice@example.com", "password123"); err == nil {
		t.Error("expected duplicate-email error")
	}
	if _, err := svc.Register(ctx, "alice", "other@example.com", "password123"); err == nil {
		t.Error("expected duplicate-username error")
	}
}

func TestRegisterSurvivesQueueFailure(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMail{err: errors.New("redis down")}
	svc := newTestService(repo, mail)

	u, err := svc.Register(context.Background(), "bob", "bob@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v, queue failures must not fail registration", err)
	}
	if _, err := repo.FindByID(context.Background(), u.ID.Hex()); err != nil {
		t.Errorf("user not persisted: %v", err)
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMail{})
	ctx := context.Background()

	u, err := svc.Register(ctx, "carol", "carol@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored := repo.users[u.ID.Hex()]
	past := time.Now().Add(-time.Hour)
	stored.VerifyExpiresAt = &past

	if err := svc.VerifyEmail(ctx, u.VerifyToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyEmail() with expired token = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), &fakeMail{})
	if err := svc.VerifyEmail(context.Background(), "no-such-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
	if err := svc.VerifyEmail(context.Background(), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("empty token error = %v, want ErrTokenInvalid", err)
	}
}

func TestResendVerificationRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMail{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	u, err := svc.Register(ctx, "dave", "dave@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	firstToken := u.VerifyToken

	if err := svc.ResendVerification(ctx, "dave@example.com"); err != nil {
		t.Fatalf("ResendVerification() error = %v", err)
	}

	stored := repo.users[u.ID.Hex()]
	if stored.VerifyToken == firstToken {
		t.Error("token not rotated")
	}
	if len(mail.jobs) != 2 {
		t.Errorf("queued %d emails, want 2", len(mail.jobs))
	}

	// the old token no longer verifies
	if err := svc.VerifyEmail(ctx, firstToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("old token error = %v, want ErrTokenInvalid", err)
	}
	if err := svc.VerifyEmail(ctx, stored.VerifyToken); err != nil {
		t.Errorf("rotated token error = %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	utils.SetSecret("test-secret")
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMail{})
	ctx := context.Background()

	u, err := svc.Register(ctx, "erin", "erin@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := svc.VerifyEmail(ctx, u.VerifyToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	if _, err := svc.Login(ctx, "erin@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}
