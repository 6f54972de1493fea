package routes

import (
	"log"
	"net/http"

	"partyquiz/handlers"
	"partyquiz/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	hostHandler *handlers.HostHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	gameService *services.GameService,
	authService *services.AuthService,
) {
	api := router.Group("/api")
	{
		host := api.Group("/host")
		{
			host.POST("/verify-password", hostHandler.VerifyPassword)
			host.POST("/start-quiz", hostHandler.StartQuiz)
			host.POST("/next-question", hostHandler.NextQuestion)
			host.POST("/reset-game", hostHandler.ResetGame)
			host.POST("/end-game", hostHandler.EndGame)
			host.GET("/game-state", hostHandler.GameState)

			host.POST("/questions", hostHandler.AddQuestion)
			host.PATCH("/questions/:id", hostHandler.UpdateQuestion)
			host.DELETE("/questions/:id", hostHandler.DeleteQuestion)
		}

		api.GET("/game-state", gameHandler.GameState)

		games := api.Group("/games")
		{
			games.POST("/:pin/join", gameHandler.JoinGame)
			games.POST("/:pin/answer", gameHandler.SubmitAnswer)
			games.GET("/:pin/qr", gameHandler.JoinQR)
		}
	}

	// Player websocket: the push variant. Players may connect before
	// registering and send register-player over the socket, or connect with
	// the player_id they got from the REST join.
	router.GET("/ws", func(c *gin.Context) {
		pin := c.Query("pin")
		if token := c.Query("session_token"); token != "" {
			state, err := gameService.FindByToken(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			pin = state.Pin
		}

		if _, err := gameService.FindByPin(c.Request.Context(), pin); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for session %s: %v", pin, err)
			return
		}
		hub.RegisterClient(conn, pin, c.Query("player_id"), false)
	})

	// Host websocket, gated by the token from verify-password.
	router.GET("/ws/host", func(c *gin.Context) {
		if err := authService.ValidateHostToken(c.Query("token")); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid host token"})
			return
		}

		state, err := gameService.ActiveState(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for host of session %s: %v", state.Pin, err)
			return
		}
		hub.RegisterClient(conn, state.Pin, "", true)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
