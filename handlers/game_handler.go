package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"partyquiz/models"
	"partyquiz/services"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// GameHandler serves the player-facing REST surface: the polling variant's
// reads and writes, plus the join-link QR image.
type GameHandler struct {
	gameService *services.GameService
	baseURL     string
}

func NewGameHandler(gameService *services.GameService, baseURL string) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		baseURL:     baseURL,
	}
}

type joinRequest struct {
	Name         string `json:"name"`
	SessionToken string `json:"session_token"`
}

type answerRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// JoinGame registers a player by PIN (or token, push-variant links).
func (h *GameHandler) JoinGame(c *gin.Context) {
	pin := c.Param("pin")

	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.gameService.RegisterPlayer(c.Request.Context(), pin, req.SessionToken, req.Name)
	if err != nil {
		c.JSON(statusFor(err), models.RegistrationResultPayload{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.RegistrationResultPayload{
		Success:    true,
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
}

// SubmitAnswer records a player's answer for the active question.
func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	pin := c.Param("pin")

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.gameService.SubmitAnswer(c.Request.Context(), pin, req.PlayerID, req.Answer)
	if err != nil {
		c.JSON(statusFor(err), models.AnswerResultPayload{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.AnswerResultPayload{
		Success:      true,
		IsCorrect:    answer.IsCorrect,
		PointsEarned: answer.Points,
		TimeTakenMs:  answer.TimeTakenMs,
	})
}

// GameState is the polling variant's read: the sanitized session snapshot,
// looked up by pin or session token.
func (h *GameHandler) GameState(c *gin.Context) {
	var (
		state *models.SessionState
		err   error
	)
	if token := c.Query("session_token"); token != "" {
		state, err = h.gameService.FindByToken(c.Request.Context(), token)
	} else if pin := c.Query("pin"); pin != "" {
		state, err = h.gameService.FindByPin(c.Request.Context(), pin)
	} else {
		state, err = h.gameService.ActiveState(c.Request.Context())
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.gameService.GameStateView(state))
}

// JoinQR renders the session's join link as a QR code PNG.
func (h *GameHandler) JoinQR(c *gin.Context) {
	pin := c.Param("pin")

	state, err := h.gameService.FindByPin(c.Request.Context(), pin)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	joinURL := fmt.Sprintf("%s?sessionToken=%s", h.baseURL, url.QueryEscape(state.Token))
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
