package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeUsersService struct {
	listFn       func(ctx context.Context) ([]user.User, error)
	getByIDFn    func(ctx context.Context, id int64) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, c user.Candidate) (user.User, error)
	updateFn     func(ctx context.Context, id int64, c user.Candidate) (user.User, error)
	deleteFn     func(ctx context.Context, id int64) error
}

func (f *fakeUsersService) List(ctx context.Context) ([]user.User, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func (f *fakeUsersService) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getByIDFn == nil {
		return user.User{}, user.NotFoundByID(id)
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeUsersService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn == nil {
		return user.User{}, user.NotFoundByEmail(email)
	}
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUsersService) Create(ctx context.Context, c user.Candidate) (user.User, error) {
	if f.createFn == nil {
		return user.User{}, errors.New("createFn not set")
	}
	return f.createFn(ctx, c)
}

func (f *fakeUsersService) Update(ctx context.Context, id int64, c user.Candidate) (user.User, error) {
	if f.updateFn == nil {
		return user.User{}, errors.New("updateFn not set")
	}
	return f.updateFn(ctx, id, c)
}

func (f *fakeUsersService) Delete(ctx context.Context, id int64) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

type countingRecorder struct {
	kinds []string
}

func (c *countingRecorder) ObserveUserError(kind string) {
	c.kinds = append(c.kinds, kind)
}

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      json.RawMessage   `json:"data"`
	Errors    map[string]string `json:"errors"`
	Timestamp time.Time         `json:"timestamp"`
}

func newUsersRouter(svc handlers.UsersService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := handlers.NewUsersHandler(svc)

	r := gin.New()
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)
	r.GET("/users/email/:email", h.GetUserByEmail)
	r.POST("/users", h.CreateUser)
	r.PUT("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNotModified {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v body=%s", err, w.Body.String())
		}
	}

	return w, env
}

func sampleUser(id int64) user.User {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return user.User{
		ID:        id,
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Password:  "secret123",
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestCreateUser_Success(t *testing.T) {
	var got user.Candidate
	svc := &fakeUsersService{
		createFn: func(_ context.Context, c user.Candidate) (user.User, error) {
			got = c
			return sampleUser(7), nil
		},
	}

	body := `{"firstName":"John","lastName":"Doe","email":"john@example.com","password":"secret123"}`
	w, env := doJSON(t, newUsersRouter(svc), http.MethodPost, "/users", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
	if !env.Success || env.Message != "User created successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Timestamp.IsZero() {
		t.Fatalf("timestamp must be set")
	}
	if got.Email != "john@example.com" || got.Password != "secret123" {
		t.Fatalf("candidate not passed through: %+v", got)
	}
	if loc := w.Header().Get("Location"); loc != "/users/7" {
		t.Fatalf("unexpected Location: %q", loc)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data: %v", err)
	}
	if _, ok := data["password"]; ok {
		t.Fatalf("password must never be serialized: %s", env.Data)
	}
	if data["firstName"] != "John" || data["id"].(float64) != 7 {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestCreateUser_ValidationFailures(t *testing.T) {
	called := false
	svc := &fakeUsersService{
		createFn: func(context.Context, user.Candidate) (user.User, error) {
			called = true
			return user.User{}, nil
		},
	}
	r := newUsersRouter(svc)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing first name", body: `{"lastName":"Doe","email":"a@x.com","password":"secret123"}`, wantField: "firstName"},
		{name: "blank first name", body: `{"firstName":"   ","lastName":"Doe","email":"a@x.com","password":"secret123"}`, wantField: "firstName"},
		{name: "bad email", body: `{"firstName":"J","lastName":"Doe","email":"not-an-email","password":"secret123"}`, wantField: "email"},
		{name: "short password", body: `{"firstName":"J","lastName":"Doe","email":"a@x.com","password":"123"}`, wantField: "password"},
		{name: "missing password", body: `{"firstName":"J","lastName":"Doe","email":"a@x.com"}`, wantField: "password"},
		{name: "long last name", body: `{"firstName":"J","lastName":"` + string(bytes.Repeat([]byte("x"), 51)) + `","email":"a@x.com","password":"secret123"}`, wantField: "lastName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/users", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
			}
			if env.Success || env.Message != "Validation failed" {
				t.Fatalf("unexpected envelope: %+v", env)
			}
			if env.Errors[tt.wantField] == "" {
				t.Fatalf("missing field error for %q: %v", tt.wantField, env.Errors)
			}
		})
	}

	if called {
		t.Fatalf("service must not be called for invalid input")
	}
}

func TestUserRequests_RejectPasswordsOverByteLimit(t *testing.T) {
	called := false
	svc := &fakeUsersService{
		createFn: func(context.Context, user.Candidate) (user.User, error) {
			called = true
			return sampleUser(1), nil
		},
		updateFn: func(_ context.Context, id int64, _ user.Candidate) (user.User, error) {
			called = true
			return sampleUser(id), nil
		},
	}
	r := newUsersRouter(svc)

	// 40 characters fits max=72 but is 80 bytes
	password := strings.Repeat("é", 40)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/users",
			body:   `{"firstName":"John","lastName":"Doe","email":"john@example.com","password":"` + password + `"}`,
		},
		{
			name:   "update",
			method: http.MethodPut,
			path:   "/users/1",
			body:   `{"firstName":"John","lastName":"Doe","email":"john@example.com","password":"` + password + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, tt.method, tt.path, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
			}
			if env.Message != "Validation failed" {
				t.Fatalf("unexpected message: %q", env.Message)
			}
			if env.Errors["password"] != "must be at most 72 bytes" {
				t.Fatalf("unexpected password error: %v", env.Errors)
			}
		})
	}

	if called {
		t.Fatalf("service must not be called for an over-long password")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	rec := &countingRecorder{}
	svc := &fakeUsersService{
		createFn: func(context.Context, user.Candidate) (user.User, error) {
			return user.User{}, user.DuplicateEmail()
		},
	}

	gin.SetMode(gin.TestMode)
	h := handlers.NewUsersHandler(svc).WithErrorRecorder(rec)
	r := gin.New()
	r.POST("/users", h.CreateUser)

	body := `{"firstName":"John","lastName":"Doe","email":"john@example.com","password":"secret123"}`
	w, env := doJSON(t, r, http.MethodPost, "/users", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
	if env.Message != "Email already in use" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != string(user.KindDuplicateEmail) {
		t.Fatalf("expected one DUPLICATE_EMAIL observation, got %v", rec.kinds)
	}
}

func TestGetUser(t *testing.T) {
	svc := &fakeUsersService{
		getByIDFn: func(_ context.Context, id int64) (user.User, error) {
			if id == 1 {
				return sampleUser(1), nil
			}
			return user.User{}, user.NotFoundByID(id)
		},
	}
	r := newUsersRouter(svc)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantMessage string
	}{
		{name: "found", path: "/users/1", wantStatus: http.StatusOK, wantMessage: "User retrieved successfully"},
		{name: "missing", path: "/users/999", wantStatus: http.StatusNotFound, wantMessage: "User not found with id: 999"},
		{name: "non numeric", path: "/users/abc", wantStatus: http.StatusBadRequest, wantMessage: "Invalid user id: abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodGet, tt.path, "")

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if env.Message != tt.wantMessage {
				t.Fatalf("got message %q, want %q", env.Message, tt.wantMessage)
			}
			if env.Success != (tt.wantStatus == http.StatusOK) {
				t.Fatalf("success flag mismatch: %+v", env)
			}
		})
	}
}

func TestGetUser_ETagRoundTrip(t *testing.T) {
	svc := &fakeUsersService{
		getByIDFn: func(context.Context, int64) (user.User, error) {
			return sampleUser(1), nil
		},
	}
	r := newUsersRouter(svc)

	w, _ := doJSON(t, r, http.MethodGet, "/users/1", "")
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.Header.Set("If-None-Match", etag)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w2.Code)
	}
}

func TestGetUserByEmail(t *testing.T) {
	svc := &fakeUsersService{
		getByEmailFn: func(_ context.Context, email string) (user.User, error) {
			if email == "john@example.com" {
				return sampleUser(1), nil
			}
			return user.User{}, user.NotFoundByEmail(email)
		},
	}
	r := newUsersRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/users/email/john@example.com", "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("got status %d body=%s", w.Code, w.Body.String())
	}

	w, env = doJSON(t, r, http.MethodGet, "/users/email/nobody@example.com", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
	if env.Message != "User not found with email: nobody@example.com" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestListUsers(t *testing.T) {
	svc := &fakeUsersService{
		listFn: func(context.Context) ([]user.User, error) {
			return []user.User{sampleUser(1), sampleUser(2)}, nil
		},
	}

	w, env := doJSON(t, newUsersRouter(svc), http.MethodGet, "/users", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if env.Message != "Users retrieved successfully" {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 users, got %d", len(items))
	}
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	w, env := doJSON(t, newUsersRouter(&fakeUsersService{}), http.MethodGet, "/users", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty array, got %s", env.Data)
	}
}

func TestListUsers_UnexpectedFailureHidesDetails(t *testing.T) {
	svc := &fakeUsersService{
		listFn: func(context.Context) ([]user.User, error) {
			return nil, user.Unexpected("list users", errors.New("dial tcp 10.0.0.5:5432: connection refused"))
		},
	}

	w, env := doJSON(t, newUsersRouter(svc), http.MethodGet, "/users", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}
	if env.Message != "An unexpected error occurred" {
		t.Fatalf("internal details leaked: %q", env.Message)
	}
}

func TestUpdateUser(t *testing.T) {
	var gotID int64
	var got user.Candidate
	svc := &fakeUsersService{
		updateFn: func(_ context.Context, id int64, c user.Candidate) (user.User, error) {
			gotID, got = id, c
			u := sampleUser(id)
			u.FirstName = c.FirstName
			return u, nil
		},
	}

	body := `{"firstName":"Jane","lastName":"Doe","email":"john@example.com"}`
	w, env := doJSON(t, newUsersRouter(svc), http.MethodPut, "/users/3", body)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if env.Message != "User updated successfully" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
	if gotID != 3 || got.FirstName != "Jane" || got.Password != "" {
		t.Fatalf("unexpected call: id=%d candidate=%+v", gotID, got)
	}
}

func TestUpdateUser_PasswordRules(t *testing.T) {
	svc := &fakeUsersService{
		updateFn: func(_ context.Context, id int64, _ user.Candidate) (user.User, error) {
			return sampleUser(id), nil
		},
	}
	r := newUsersRouter(svc)

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{name: "blank keeps stored", password: `"   "`, want: http.StatusOK},
		{name: "empty keeps stored", password: `""`, want: http.StatusOK},
		{name: "long enough", password: `"newsecret"`, want: http.StatusOK},
		{name: "too short", password: `"abc"`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":` + tt.password + `}`
			w, env := doJSON(t, r, http.MethodPut, "/users/1", body)
			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusBadRequest && env.Errors["password"] == "" {
				t.Fatalf("expected password field error: %v", env.Errors)
			}
		})
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc := &fakeUsersService{
		updateFn: func(_ context.Context, id int64, _ user.Candidate) (user.User, error) {
			return user.User{}, user.NotFoundByID(id)
		},
	}

	body := `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com"}`
	w, env := doJSON(t, newUsersRouter(svc), http.MethodPut, "/users/999", body)
	if w.Code != http.StatusNotFound || env.Message != "User not found with id: 999" {
		t.Fatalf("got %d %q", w.Code, env.Message)
	}
}

func TestDeleteUser(t *testing.T) {
	deleted := map[int64]bool{}
	svc := &fakeUsersService{
		deleteFn: func(_ context.Context, id int64) error {
			if id != 1 || deleted[id] {
				return user.NotFoundByID(id)
			}
			deleted[id] = true
			return nil
		},
	}
	r := newUsersRouter(svc)

	w, env := doJSON(t, r, http.MethodDelete, "/users/1", "")
	if w.Code != http.StatusOK || env.Message != "User deleted successfully" {
		t.Fatalf("got %d %q", w.Code, env.Message)
	}
	if string(env.Data) != "null" {
		t.Fatalf("expected null data, got %s", env.Data)
	}

	w, env = doJSON(t, r, http.MethodDelete, "/users/1", "")
	if w.Code != http.StatusNotFound || env.Message != "User not found with id: 1" {
		t.Fatalf("got %d %q", w.Code, env.Message)
	}
}
