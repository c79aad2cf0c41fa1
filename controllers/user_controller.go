// File: /controllers/user_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"serenity-api/services"
	"serenity-api/utils"
)

type UserController struct {
	profiles *services.ProfileService
}

func NewUserController(profiles *services.ProfileService) *UserController {
	return &UserController{profiles: profiles}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	profile, err := uc.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.SendError(c, statusForError(err), "Failed to fetch profile")
		return
	}
	if profile == nil {
		utils.SendError(c, http.StatusNotFound, "Profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type UpdateProfileRequest struct {
	Name      *string    `json:"name"`
	Avatar    *string    `json:"avatar"`
	Bio       *string    `json:"bio"`
	CleanDate *time.Time `json:"clean_date"`
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Avatar != nil {
		fields["avatar"] = req.Avatar
	}
	if req.Bio != nil {
		fields["bio"] = req.Bio
	}
	if req.CleanDate != nil {
		fields["clean_date"] = req.CleanDate
	}

	if len(fields) == 0 {
		utils.SendError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	profile, err := uc.profiles.Update(c.Request.Context(), userID, fields)
	if err != nil {
		utils.SendError(c, statusForError(err), "Failed to update profile")
		return
	}

	utils.SendSuccess(c, "Profile updated successfully", profile)
}
