package handlers

import (
	"net/http"
	"strconv"

	"partyquiz/services"

	"github.com/gin-gonic/gin"
)

// HostHandler serves the password-gated host commands. Every command carries
// the shared secret; verify-password additionally hands out the join token
// and a websocket token.
type HostHandler struct {
	gameService *services.GameService
	authService *services.AuthService
}

func NewHostHandler(gameService *services.GameService, authService *services.AuthService) *HostHandler {
	return &HostHandler{
		gameService: gameService,
		authService: authService,
	}
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

type updateQuestionRequest struct {
	Password string `json:"password" binding:"required"`
	Field    string `json:"field" binding:"required"`
	Value    string `json:"value"`
}

func (h *HostHandler) verify(c *gin.Context, password string) bool {
	if err := h.authService.VerifyHostPassword(password); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *HostHandler) bindPassword(c *gin.Context) (string, bool) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return req.Password, h.verify(c, req.Password)
}

// VerifyPassword checks the host secret and returns the active session's
// identifiers plus a token for the host websocket. The session is created
// lazily on first verification.
func (h *HostHandler) VerifyPassword(c *gin.Context) {
	if _, ok := h.bindPassword(c); !ok {
		return
	}

	state, err := h.gameService.EnsureSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hostToken, err := h.authService.IssueHostToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"pin":           state.Pin,
		"session_token": state.Token,
		"host_token":    hostToken,
	})
}

func (h *HostHandler) StartQuiz(c *gin.Context) {
	if _, ok := h.bindPassword(c); !ok {
		return
	}
	if err := h.gameService.StartGame(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HostHandler) NextQuestion(c *gin.Context) {
	if _, ok := h.bindPassword(c); !ok {
		return
	}
	if err := h.gameService.NextQuestion(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HostHandler) ResetGame(c *gin.Context) {
	if _, ok := h.bindPassword(c); !ok {
		return
	}
	if err := h.gameService.ResetGame(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HostHandler) EndGame(c *gin.Context) {
	if _, ok := h.bindPassword(c); !ok {
		return
	}
	if err := h.gameService.EndGame(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GameState returns the full host view, correct answers included.
func (h *HostHandler) GameState(c *gin.Context) {
	if !h.verify(c, c.Query("password")) {
		return
	}
	state, err := h.gameService.ActiveState(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *HostHandler) AddQuestion(c *gin.Context) {
	if _, ok := h.bindPassword(c); !ok {
		return
	}
	question, err := h.gameService.AddQuestion(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *HostHandler) UpdateQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verify(c, req.Password) {
		return
	}

	if err := h.gameService.UpdateQuestion(c.Request.Context(), id, req.Field, req.Value); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HostHandler) DeleteQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}
	if _, ok := h.bindPassword(c); !ok {
		return
	}
	if err := h.gameService.DeleteQuestion(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
