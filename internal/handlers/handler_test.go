package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/token"
)

// errStore simulates a persistence failure.
var errStore = errors.New("store unavailable")

// --- in-memory fakes ---

type fakePostStore struct {
	posts map[uuid.UUID]*models.Post
	order []uuid.UUID
	fail  bool
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uuid.UUID]*models.Post)}
}

func (f *fakePostStore) List() ([]models.Post, error) {
	if f.fail {
		return nil, errStore
	}
	var out []models.Post
	for _, id := range f.order {
		out = append(out, *f.posts[id])
	}
	return out, nil
}

func (f *fakePostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	if f.fail {
		return nil, errStore
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostStore) Create(p *models.Post) (*models.Post, error) {
	if f.fail {
		return nil, errStore
	}
	stored := *p
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.posts[stored.ID] = &stored
	f.order = append(f.order, stored.ID)
	cp := stored
	return &cp, nil
}

func (f *fakePostStore) Update(p *models.Post) (*models.Post, error) {
	if f.fail {
		return nil, errStore
	}
	stored, ok := f.posts[p.ID]
	if !ok {
		return nil, nil
	}
	stored.Title = p.Title
	stored.Content = p.Content
	stored.Author = p.Author
	stored.CategoryID = p.CategoryID
	stored.UpdatedAt = time.Now()
	cp := *stored
	return &cp, nil
}

func (f *fakePostStore) Delete(id uuid.UUID) error {
	if f.fail {
		return errStore
	}
	delete(f.posts, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeCommentStore struct {
	comments []models.Comment
	fail     bool
}

func (f *fakeCommentStore) Create(content string, postID, authorID uuid.UUID) (*models.Comment, error) {
	if f.fail {
		return nil, errStore
	}
	c := models.Comment{
		ID:        uuid.New(),
		Content:   content,
		PostID:    postID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	f.comments = append(f.comments, c)
	return &c, nil
}

func (f *fakeCommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	if f.fail {
		return nil, errStore
	}
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCategoryStore struct {
	categories map[uuid.UUID]*models.Category
	postCounts map[uuid.UUID]int
	orphaned   []uuid.UUID
	fail       bool
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{
		categories: make(map[uuid.UUID]*models.Category),
		postCounts: make(map[uuid.UUID]int),
	}
}

func (f *fakeCategoryStore) List() ([]models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) FindByName(name string) (*models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	for _, c := range f.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) Create(name string) (*models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	c := models.Category{ID: uuid.New(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.categories[c.ID] = &c
	cp := c
	return &cp, nil
}

func (f *fakeCategoryStore) UpdateName(id uuid.UUID, name string) (*models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) CountPosts(id uuid.UUID) (int, error) {
	if f.fail {
		return 0, errStore
	}
	return f.postCounts[id], nil
}

func (f *fakeCategoryStore) Delete(id uuid.UUID) error {
	if f.fail {
		return errStore
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryStore) DeleteAndOrphanPosts(id uuid.UUID) error {
	if f.fail {
		return errStore
	}
	f.orphaned = append(f.orphaned, id)
	f.postCounts[id] = 0
	delete(f.categories, id)
	return nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
	fail  bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) FindByEmail(email string) (*models.User, error) {
	if f.fail {
		return nil, errStore
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(id uuid.UUID) (*models.User, error) {
	if f.fail {
		return nil, errStore
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) Create(name, email, password string, role models.Role) (*models.User, error) {
	if f.fail {
		return nil, errStore
	}
	u := models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: "hashed:" + password,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.ID] = &u
	cp := u
	return &cp, nil
}

func (f *fakeUserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	if f.fail {
		return errStore
	}
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("no such user")
	}
	u.TOTPSecret = &secret
	return nil
}

func (f *fakeUserStore) EnableTOTP(userID uuid.UUID) error {
	if f.fail {
		return errStore
	}
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("no such user")
	}
	u.TOTPEnabled = true
	return nil
}

func (f *fakeUserStore) CheckPassword(user *models.User, password string) bool {
	return user.PasswordHash == "hashed:"+password
}

type fakeTokenService struct {
	issued  int
	revoked []string
	fail    bool
}

func (f *fakeTokenService) Issue(user *models.User) (string, error) {
	if f.fail {
		return "", errStore
	}
	f.issued++
	return fmt.Sprintf("token-%s-%d", user.ID, f.issued), nil
}

func (f *fakeTokenService) Revoke(ctx context.Context, raw string) error {
	if f.fail {
		return errStore
	}
	f.revoked = append(f.revoked, raw)
	return nil
}

// --- request helpers ---

func adminIdentity() *token.Identity {
	return &token.Identity{UserID: uuid.New(), Name: "Ana", Role: models.RoleAdmin}
}

func readerIdentity() *token.Identity {
	return &token.Identity{UserID: uuid.New(), Name: "Radu", Role: models.RoleReader}
}

// newRequest builds a request with chi URL params, an optional JSON body,
// and an optional authenticated identity.
func newRequest(t *testing.T, method, target string, body any, id *token.Identity, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if id != nil {
		ctx = context.WithValue(ctx, middleware.IdentityKey, id)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %q)", rr.Code, want, rr.Body.String())
	}
}

func wantMessage(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body map[string]string
	decodeBody(t, rr, &body)
	if body["message"] != want {
		t.Errorf("message: got %q, want %q", body["message"], want)
	}
}
