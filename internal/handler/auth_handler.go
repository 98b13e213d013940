package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
	allowSignup bool
}

func NewAuthHandler(authService service.AuthService, userService service.UserService, allowSignup bool) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, allowSignup: allowSignup}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest represents the self registration body
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid JSON")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest("Username and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// Signup creates an employee account when self registration is enabled
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	if !h.allowSignup {
		return fiber.NewError(fiber.StatusForbidden, "Signup is disabled")
	}

	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid JSON")
	}

	user, err := h.userService.Register(c.UserContext(), service.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     model.RoleEmployee,
	}, "signup")
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Account created", "data": user.ToResponse()})
}

// Me returns the caller's own account
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.userService.GetUserByID(c.UserContext(), sessionOf(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// Logout invalidates every token issued to the caller
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), sessionOf(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// ChangePassword handles a self service password change
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid JSON")
	}

	if err := h.authService.ChangePassword(c.UserContext(), sessionOf(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
