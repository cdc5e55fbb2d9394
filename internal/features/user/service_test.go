package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type stubRepo struct {
	users map[string]*User
	finds int // FindByID call count
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]*User)}
}

func (r *stubRepo) add(username, email string, status UserStatus) *User {
	u := &User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Email:    email,
		Status:   status,
	}
	r.users[u.ID.Hex()] = u
	return u
}

func (r *stubRepo) Create(ctx context.Context, u *User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID.Hex()] = u
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id string) (*User, error) {
	r.finds++
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	dup := *u
	return &dup, nil
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			dup := *u
			return &dup, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *stubRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			dup := *u
			return &dup, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *stubRepo) FindByVerifyToken(ctx context.Context, token string) (*User, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *stubRepo) FindActive(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if u.Status == StatusActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubRepo) Update(ctx context.Context, u *User) error {
	r.users[u.ID.Hex()] = u
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *stubRepo) EnsureIndexes(ctx context.Context) error { return nil }

// memKV is an in-memory KV; broken flips every operation to an error
type memKV struct {
	data   map[string][]byte
	broken bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (kv *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	if kv.broken {
		return nil, errors.New("connection refused")
	}
	data, ok := kv.data[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (kv *memKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if kv.broken {
		return errors.New("connection refused")
	}
	kv.data[key] = val
	return nil
}

func (kv *memKV) Del(ctx context.Context, keys ...string) error {
	if kv.broken {
		return errors.New("connection refused")
	}
	for _, k := range keys {
		delete(kv.data, k)
	}
	return nil
}

func newCachedService(repo UserRepository, kv KV) *UserServiceImpl {
	return &UserServiceImpl{Repo: repo, Cache: kv, Logger: zap.NewNop()}
}

func TestGetUserReadThrough(t *testing.T) {
	repo := newStubRepo()
	kv := newMemKV()
	svc := newCachedService(repo, kv)
	ctx := context.Background()

	u := repo.add("alice", "alice@example.com", StatusActive)
	id := u.ID.Hex()

	// miss hits Mongo and backfills
	got, err := svc.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %q", got.Email)
	}
	if repo.finds != 1 {
		t.Errorf("FindByID called %d times, want 1", repo.finds)
	}
	if _, ok := kv.data[userCacheKey(id)]; !ok {
		t.Fatal("cache not backfilled after miss")
	}

	// hit does not touch Mongo again
	if _, err := svc.GetUser(ctx, id); err != nil {
		t.Fatalf("cached GetUser() error = %v", err)
	}
	if repo.finds != 1 {
		t.Errorf("FindByID called %d times after cache hit, want 1", repo.finds)
	}
}

func TestGetUserCorruptCacheEntry(t *testing.T) {
	repo := newStubRepo()
	kv := newMemKV()
	svc := newCachedService(repo, kv)
	ctx := context.Background()

	u := repo.add("bob", "bob@example.com", StatusActive)
	kv.data[userCacheKey(u.ID.Hex())] = []byte("{corrupt")

	got, err := svc.GetUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != "bob@example.com" {
		t.Errorf("email = %q, want the Mongo copy", got.Email)
	}
}

func TestGetUserDegradesWhenCacheDown(t *testing.T) {
	repo := newStubRepo()
	kv := newMemKV()
	kv.broken = true
	svc := newCachedService(repo, kv)

	u := repo.add("carol", "carol@example.com", StatusActive)

	got, err := svc.GetUser(context.Background(), u.ID.Hex())
	if err != nil {
		t.Fatalf("GetUser() with broken cache error = %v", err)
	}
	if got.Email != "carol@example.com" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestUpdateUserInvalidatesCache(t *testing.T) {
	repo := newStubRepo()
	kv := newMemKV()
	svc := newCachedService(repo, kv)
	ctx := context.Background()

	u := repo.add("dave", "dave@example.com", StatusActive)
	id := u.ID.Hex()

	if _, err := svc.GetUser(ctx, id); err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if _, ok := kv.data[userCacheKey(id)]; !ok {
		t.Fatal("expected a cached entry")
	}

	u.Username = "david"
	if err := svc.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if _, ok := kv.data[userCacheKey(id)]; ok {
		t.Error("cache entry not invalidated after update")
	}

	// next read sees the new value
	got, err := svc.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser() after update error = %v", err)
	}
	if got.Username != "david" {
		t.Errorf("username = %q, want david", got.Username)
	}
}

func TestUpdateUserPreservesCredentials(t *testing.T) {
	repo := newStubRepo()
	kv := newMemKV()
	svc := newCachedService(repo, kv)
	ctx := context.Background()

	u := repo.add("frank", "frank@example.com", StatusActive)
	u.Password = "bcrypt-hash"
	id := u.ID.Hex()

	// prime the cache; the cached JSON strips the password
	if _, err := svc.GetUser(ctx, id); err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	cached, err := svc.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("cached GetUser() error = %v", err)
	}
	if cached.Password != "" {
		t.Fatal("cached copy should not carry the password")
	}

	cached.Username = "francis"
	if err := svc.UpdateUser(ctx, cached); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	stored := repo.users[id]
	if stored.Password != "bcrypt-hash" {
		t.Errorf("password = %q after update, want the original hash", stored.Password)
	}
	if stored.Username != "francis" {
		t.Errorf("username = %q, want francis", stored.Username)
	}
}

func TestDeleteUserInvalidatesCache(t *testing.T) {
	repo := newStubRepo()
	kv := newMemKV()
	svc := newCachedService(repo, kv)
	ctx := context.Background()

	u := repo.add("erin", "erin@example.com", StatusActive)
	id := u.ID.Hex()

	if _, err := svc.GetUser(ctx, id); err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if err := svc.DeleteUser(ctx, id); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, ok := kv.data[userCacheKey(id)]; ok {
		t.Error("cache entry survived deletion")
	}
	if _, err := svc.GetUser(ctx, id); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetUser() after delete = %v, want ErrNoDocuments", err)
	}
}

func TestActiveRecipients(t *testing.T) {
	repo := newStubRepo()
	svc := newCachedService(repo, newMemKV())

	repo.add("alice", "alice@example.com", StatusActive)
	repo.add("bob", "bob@example.com", StatusPending)
	repo.add("carol", "carol@example.com", StatusSuspended)

	recipients, err := svc.ActiveRecipients(context.Background())
	if err != nil {
		t.Fatalf("ActiveRecipients() error = %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("got %d recipients, want 1 (only active users)", len(recipients))
	}
	if recipients[0].Email != "alice@example.com" {
		t.Errorf("recipient = %q", recipients[0].Email)
	}
}

func TestVerifyTokenNotSerializedToJSON(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	u := User{
		ID:              primitive.NewObjectID(),
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "hashed",
		VerifyToken:     "secret-token",
		VerifyExpiresAt: &expires,
	}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, leak := range []string{"secret-token", "hashed"} {
		if strings.Contains(string(data), leak) {
			t.Errorf("JSON leaks %q: %s", leak, data)
		}
	}
}
