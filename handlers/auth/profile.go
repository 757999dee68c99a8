package auth

import (
	"github.com/academic-system/records-api/model"
	authutil "github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ProfileResponse is the account plus its role profile, if any.
type ProfileResponse struct {
	User       UserResponse      `json:"user"`
	Student    *model.Student    `json:"student,omitempty"`
	Instructor *model.Instructor `json:"instructor,omitempty"`
}

// Me returns the authenticated account with its student or instructor
// profile attached.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	res := ProfileResponse{User: toUserResponse(user)}
	res.Student, res.Instructor = h.loadProfile(user)

	return response.Success(c, res)
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword updates the account password and invalidates every
// outstanding token.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "New password must be at least 8 characters")
	}

	newHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	if err := h.db.Model(user).Update("password_hash", newHash).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	// Force re-login everywhere.
	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate sessions")
	}

	return response.SuccessWithMessage(c, "Password changed successfully", nil)
}
