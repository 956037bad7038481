package handler

import (
	"strings"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Register creates an admin. The first admin may register anonymously;
// after that a valid admin token is required.
func (h *Handler) Register(c *fiber.Ctx) error {
	count, err := h.store.CountAdmins(c.UserContext())
	if err != nil {
		return h.fail(c, store.AsAppError("admin", "", err))
	}
	if count > 0 && !h.authenticated(c) {
		return h.fail(c, apperr.Unauthorized("Only an existing admin can register new admins"))
	}

	var req models.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.fail(c, apperr.Store("hash password", err))
	}

	admin, err := h.store.CreateAdmin(c.UserContext(), models.Admin{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	})
	if err != nil {
		if err == store.ErrDuplicate {
			return h.fail(c, apperr.Duplicate("An admin with this email already exists", err))
		}
		return h.fail(c, store.AsAppError("admin", req.Email, err))
	}

	h.log.Info("admin registered", map[string]interface{}{"admin_id": admin.ID})
	return ok(c, fiber.StatusCreated, "Admin registered", models.ToAdminResponse(admin))
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	admin, err := h.store.GetAdminByEmail(c.UserContext(), strings.TrimSpace(req.Email))
	if err == store.ErrNotFound {
		return h.fail(c, apperr.Unauthorized("Invalid email or password"))
	}
	if err != nil {
		return h.fail(c, store.AsAppError("admin", req.Email, err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return h.fail(c, apperr.Unauthorized("Invalid email or password"))
	}

	token, err := h.tokens.GenerateToken(admin.ID, admin.FullName, admin.Email)
	if err != nil {
		return h.fail(c, apperr.Store("generate token", err))
	}

	return ok(c, fiber.StatusOK, "Welcome back, "+admin.FullName, models.LoginResponse{
		Token: token,
		Admin: models.ToAdminResponse(admin),
	})
}

// authenticated reports whether the request carries a valid admin token.
func (h *Handler) authenticated(c *fiber.Ctx) bool {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false
	}
	_, err := h.tokens.ValidateToken(parts[1])
	return err == nil
}
