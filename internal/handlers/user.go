package handlers

import (
	"net/http"

	"quill/internal/middleware"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Responder
	users *services.UserService
}

func NewUserHandler(users *services.UserService, r Responder) *UserHandler {
	return &UserHandler{Responder: r, users: users}
}

type updateUserRequest struct {
	Name *string `json:"name" validate:"omitnil,min=1,max=64"`
	Pass *string `json:"pass" validate:"omitnil,min=1"`
	Role *string `json:"role" validate:"omitnil,oneof=author reader"`
}

// Update changes the caller's own profile.
func (h *UserHandler) Update(c *gin.Context) {
	req, err := bind(c, func(r *updateUserRequest) {
		cleanText(r.Name)
		cleanText(r.Role)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := h.users.Update(c.Request.Context(), user.ID, services.UserUpdate{
		Name: req.Name,
		Pass: req.Pass,
		Role: req.Role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "user updated", "user", toUser(updated))
}

func (h *UserHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.users.Delete(c.Request.Context(), user.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
