package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-notes/internal/domain"
	"todo-notes/internal/service"
)

type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	// Identifier accepts an email address or a username.
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res := h.sessions.Signup(c.Request.Context(), service.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if !res.Success {
		writeFailure(c, res)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": res.User, "message": res.Message})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	res := h.sessions.Login(c.Request.Context(), identifier, req.Password)
	if !res.Success {
		writeFailure(c, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": res.User, "message": res.Message})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	user := h.sessions.Current()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) requireSession(c *gin.Context) {
	if h.sessions.Current() == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.Next()
}

func (h *Handler) listUsers(c *gin.Context) {
	users := h.users.ListUsers(c.Request.Context())
	if users == nil {
		users = []domain.User{}
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) clearUsers(c *gin.Context) {
	if err := h.users.ClearUsers(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("clear users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func writeFailure(c *gin.Context, res service.Result) {
	c.JSON(statusForKind(res.Kind), gin.H{"error": res.Message, "kind": res.Kind})
}

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindAlreadyExists:
		return http.StatusConflict
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindInvalidCredentials, service.KindUserNotFound:
		return http.StatusUnauthorized
	case service.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
