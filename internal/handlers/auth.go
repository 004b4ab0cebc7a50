package handlers

import (
	"net/http"

	"quill/internal/middleware"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Responder
	users *services.UserService
}

func NewAuthHandler(users *services.UserService, r Responder) *AuthHandler {
	return &AuthHandler{Responder: r, users: users}
}

type signUpRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Pass string `json:"pass" validate:"required"`
	Role string `json:"role" validate:"omitempty,oneof=author reader"`
}

type signInRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Pass string `json:"pass" validate:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	req, err := bind(c, func(r *signUpRequest) {
		cleanText(&r.Name)
		cleanText(&r.Role)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	_, token, err := h.users.SignUp(c.Request.Context(), req.Name, req.Pass, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "User created successfully", "token", token)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	req, err := bind(c, func(r *signInRequest) {
		cleanText(&r.Name)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	_, token, err := h.users.SignIn(c.Request.Context(), req.Name, req.Pass)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "User signed in successfully", "token", token)
}

// Logout bumps the caller's token version so every issued token stops working.
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.users.Logout(c.Request.Context(), user.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
