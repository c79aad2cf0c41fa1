// File: /controllers/friend_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serenity-api/models"
	"serenity-api/services"
	"serenity-api/utils"
)

type FriendController struct {
	friends  *services.FriendService
	profiles *services.ProfileService
}

func NewFriendController(friends *services.FriendService, profiles *services.ProfileService) *FriendController {
	return &FriendController{
		friends:  friends,
		profiles: profiles,
	}
}

func (fc *FriendController) SendFriendRequest(c *gin.Context) {
	senderID := c.GetString("user_id")
	receiverID := c.Param("user_id")

	if senderID == receiverID {
		utils.SendError(c, http.StatusBadRequest, "Cannot send friend request to yourself")
		return
	}

	request, err := fc.friends.Send(c.Request.Context(), senderID, receiverID)
	if err != nil {
		utils.SendError(c, statusForError(err), "Failed to send friend request")
		return
	}

	utils.SendCreated(c, "Friend request sent successfully", request)
}

type AcceptRequest struct {
	FromUserID string `json:"from_user_id" binding:"required"`
}

func (fc *FriendController) AcceptFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requestID := c.Param("request_id")

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	if err := fc.friends.Accept(c.Request.Context(), requestID, req.FromUserID, userID); err != nil {
		utils.SendError(c, statusForError(err), "Failed to accept friend request")
		return
	}

	utils.SendSuccess(c, "Friend request accepted successfully", nil)
}

func (fc *FriendController) RejectFriendRequest(c *gin.Context) {
	requestID := c.Param("request_id")

	if err := fc.friends.Reject(c.Request.Context(), requestID); err != nil {
		utils.SendError(c, statusForError(err), "Failed to reject friend request")
		return
	}

	utils.SendSuccess(c, "Friend request rejected successfully", nil)
}

func (fc *FriendController) RemoveFriend(c *gin.Context) {
	userID := c.GetString("user_id")
	friendID := c.Param("user_id")

	if userID == friendID {
		utils.SendError(c, http.StatusBadRequest, "Invalid operation")
		return
	}

	if err := fc.friends.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		utils.SendError(c, statusForError(err), "Failed to remove friend")
		return
	}

	utils.SendSuccess(c, "Friend removed successfully", nil)
}

func (fc *FriendController) GetPendingRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	requests, err := fc.friends.ListPendingFor(c.Request.Context(), userID)
	if err != nil {
		utils.SendError(c, statusForError(err), "Failed to fetch friend requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (fc *FriendController) GetFriends(c *gin.Context) {
	userID := c.GetString("user_id")

	profile, err := fc.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.SendError(c, statusForError(err), "Failed to fetch friends")
		return
	}
	if profile == nil {
		c.JSON(http.StatusOK, gin.H{"friends": []*models.Profile{}})
		return
	}

	friends := make([]*models.Profile, 0, len(profile.Friends))
	for _, friendID := range profile.Friends {
		friend, err := fc.profiles.GetByUserID(c.Request.Context(), friendID)
		if err != nil {
			utils.SendError(c, statusForError(err), "Failed to fetch friend details")
			return
		}
		if friend != nil {
			friends = append(friends, friend)
		}
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
