// File: /controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"serenity-api/auth"
	"serenity-api/models"
	"serenity-api/services"
	"serenity-api/utils"
)

// AuthController serves the multi-tenant HTTP surface. Every handler
// resolves identity from the request's own bearer token or
// credentials, never from shared session state: concurrent callers
// must not observe or invalidate each other's identity.
type AuthController struct {
	provider     auth.SessionProvider
	registrar    auth.AccountRegistrar
	profiles     *services.ProfileService
	emailService *services.EmailService
}

func NewAuthController(provider auth.SessionProvider, registrar auth.AccountRegistrar, profiles *services.ProfileService, emailService *services.EmailService) *AuthController {
	return &AuthController{
		provider:     provider,
		registrar:    registrar,
		profiles:     profiles,
		emailService: emailService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	User    *auth.Principal `json:"user"`
	Profile *models.Profile `json:"profile"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	principal, err := ac.registrar.CreateAccount(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			utils.SendError(c, http.StatusConflict, "Email already registered")
			return
		}
		utils.SendError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	profile, err := ac.profiles.CreateIfAbsent(c.Request.Context(), principal.ID, services.ProfileSeed{
		Name:  req.Name,
		Email: principal.Email,
	})
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	if ac.emailService != nil {
		if _, err := ac.emailService.SendVerificationEmail(principal.Email, req.Name); err != nil {
			logrus.WithError(err).Warn("verification email failed")
		}
	}

	utils.SendCreated(c, "Registration successful", gin.H{
		"user":    principal,
		"profile": profile,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	session, err := ac.provider.CreateSession(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.SendError(c, statusForError(err), "Login failed")
		return
	}

	profile, err := ac.profiles.CreateIfAbsent(c.Request.Context(), session.UserID, services.ProfileSeed{
		Name:  session.Email,
		Email: session.Email,
	})
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:   session.Token,
		User:    &auth.Principal{ID: session.UserID, Email: session.Email},
		Profile: profile,
	})
}

// Logout invalidates only the session named by the caller's own
// bearer token.
func (ac *AuthController) Logout(c *gin.Context) {
	sessionID := c.GetString("session_id")

	if err := ac.provider.DeleteSession(c.Request.Context(), sessionID); err != nil {
		utils.SendError(c, http.StatusBadGateway, "Session provider unreachable")
		return
	}

	utils.SendSuccess(c, "Successfully logged out", nil)
}

// Me returns the identity of the request's bearer, looked up fresh
// from the profile store.
func (ac *AuthController) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	profile, err := ac.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.SendError(c, statusForError(err), "Failed to load user data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    &auth.Principal{ID: userID, Email: email},
		"profile": profile,
	})
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (ac *AuthController) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	if ac.emailService == nil || !ac.emailService.VerifyCode(req.Email, req.Code) {
		utils.SendError(c, http.StatusBadRequest, "Invalid or expired verification code")
		return
	}

	utils.SendSuccess(c, "Email verified successfully", nil)
}
