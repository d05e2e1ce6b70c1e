package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const defaultRequestTimeout = 2 * time.Second

type UsersService interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, c user.Candidate) (user.User, error)
	Update(ctx context.Context, id int64, c user.Candidate) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

// ErrorRecorder counts failed user operations by kind.
type ErrorRecorder interface {
	ObserveUserError(kind string)
}

type UsersHandler struct {
	svc     UsersService
	errs    ErrorRecorder
	timeout time.Duration
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	RegisterValidators()

	return &UsersHandler{svc: svc, timeout: defaultRequestTimeout}
}

func (h *UsersHandler) WithErrorRecorder(r ErrorRecorder) *UsersHandler {
	h.errs = r
	return h
}

func (h *UsersHandler) fail(ctx *gin.Context, err error) {
	if h.errs != nil {
		h.errs.ObserveUserError(string(user.KindOf(err)))
	}
	RespondError(ctx, err)
}

func (h *UsersHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), h.timeout)
}

func parseID(ctx *gin.Context) (int64, bool) {
	raw := ctx.Param("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		RespondError(ctx, user.Validation("Invalid user id: "+raw))
		return 0, false
	}

	return id, true
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.svc.List(cctx)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondSuccessWithETag(ctx, http.StatusOK, "Users retrieved successfully", toUserResponses(users))
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := h.requestContext(ctx)
	defer cancel()

	u, err := h.svc.GetByID(cctx, id)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondSuccessWithETag(ctx, http.StatusOK, "User retrieved successfully", toUserResponse(u))
}

func (h *UsersHandler) GetUserByEmail(ctx *gin.Context) {
	email := ctx.Param("email")
	if user.IsBlank(email) {
		h.fail(ctx, user.Validation("Email is required"))
		return
	}

	cctx, cancel := h.requestContext(ctx)
	defer cancel()

	u, err := h.svc.GetByEmail(cctx, email)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondSuccessWithETag(ctx, http.StatusOK, "User retrieved successfully", toUserResponse(u))
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req UserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.svc.Create(cctx, req.toCandidate())
	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.Header("Location", "/users/"+strconv.FormatInt(created.ID, 10))
	RespondSuccess(ctx, http.StatusCreated, "User created successfully", toUserResponse(created))
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.svc.Update(cctx, id, req.toCandidate())
	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "User updated successfully", toUserResponse(updated))
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, id); err != nil {
		h.fail(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "User deleted successfully", nil)
}
