package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"partyquiz/models"
	"partyquiz/services"
)

const testPassword = "280226"

func newTestRouter(t *testing.T) (*gin.Engine, *services.GameService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := services.NewGameService(services.NewMemorySessionStore(), nil, 30)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)
	})
	auth, err := services.NewAuthService(testPassword, "test-secret")
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	hostHandler := NewHostHandler(svc, auth)
	gameHandler := NewGameHandler(svc, "http://localhost:5173")

	router := gin.New()
	host := router.Group("/api/host")
	host.POST("/verify-password", hostHandler.VerifyPassword)
	host.POST("/start-quiz", hostHandler.StartQuiz)
	host.POST("/next-question", hostHandler.NextQuestion)
	host.POST("/reset-game", hostHandler.ResetGame)
	host.POST("/end-game", hostHandler.EndGame)
	host.GET("/game-state", hostHandler.GameState)
	host.POST("/questions", hostHandler.AddQuestion)
	host.PATCH("/questions/:id", hostHandler.UpdateQuestion)
	host.DELETE("/questions/:id", hostHandler.DeleteQuestion)
	router.GET("/api/game-state", gameHandler.GameState)
	router.POST("/api/games/:pin/join", gameHandler.JoinGame)
	router.POST("/api/games/:pin/answer", gameHandler.SubmitAnswer)
	router.GET("/api/games/:pin/qr", gameHandler.JoinQR)

	return router, svc
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestVerifyPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/host/verify-password", gin.H{"password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/host/verify-password", gin.H{"password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK           bool   `json:"ok"`
		Pin          string `json:"pin"`
		SessionToken string `json:"session_token"`
		HostToken    string `json:"host_token"`
	}
	decodeBody(t, w, &resp)
	if !resp.OK || len(resp.Pin) != 6 || resp.SessionToken == "" || resp.HostToken == "" {
		t.Errorf("response = %+v", resp)
	}

	// Verifying again returns the same session.
	w = doJSON(router, http.MethodPost, "/api/host/verify-password", gin.H{"password": testPassword})
	var again struct {
		Pin string `json:"pin"`
	}
	decodeBody(t, w, &again)
	if again.Pin != resp.Pin {
		t.Errorf("second verification minted a new session: %s vs %s", again.Pin, resp.Pin)
	}
}

func TestHostCommandsRequirePassword(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(router, http.MethodPost, "/api/host/verify-password", gin.H{"password": testPassword})

	paths := []string{
		"/api/host/start-quiz",
		"/api/host/next-question",
		"/api/host/reset-game",
		"/api/host/end-game",
		"/api/host/questions",
	}
	for _, path := range paths {
		if w := doJSON(router, http.MethodPost, path, gin.H{"password": "wrong"}); w.Code != http.StatusUnauthorized {
			t.Errorf("%s with wrong password: status = %d, want 401", path, w.Code)
		}
		if w := doJSON(router, http.MethodPost, path, gin.H{}); w.Code != http.StatusBadRequest {
			t.Errorf("%s without password: status = %d, want 400", path, w.Code)
		}
	}

	if w := doJSON(router, http.MethodGet, "/api/host/game-state?password=wrong", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("game-state with wrong password: status = %d, want 401", w.Code)
	}
}

func TestQuestionAuthoringEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(router, http.MethodPost, "/api/host/verify-password", gin.H{"password": testPassword})

	w := doJSON(router, http.MethodPost, "/api/host/questions", gin.H{"password": testPassword})
	if w.Code != http.StatusCreated {
		t.Fatalf("add question status = %d, body %s", w.Code, w.Body.String())
	}
	var question models.Question
	decodeBody(t, w, &question)
	if question.ID != 1 {
		t.Errorf("question id = %d, want 1", question.ID)
	}

	w = doJSON(router, http.MethodPatch, "/api/host/questions/1", gin.H{
		"password": testPassword, "field": "text", "value": "What color is the sky?",
	})
	if w.Code != http.StatusOK {
		t.Errorf("update status = %d, body %s", w.Code, w.Body.String())
	}

	if w := doJSON(router, http.MethodPatch, "/api/host/questions/abc", gin.H{
		"password": testPassword, "field": "text", "value": "x",
	}); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}

	if w := doJSON(router, http.MethodDelete, "/api/host/questions/1", gin.H{"password": testPassword}); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
}

func TestStartQuizRejectsIncompleteQuiz(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(router, http.MethodPost, "/api/host/verify-password", gin.H{"password": testPassword})

	w := doJSON(router, http.MethodPost, "/api/host/start-quiz", gin.H{"password": testPassword})
	if w.Code != http.StatusBadRequest {
		t.Errorf("start with no questions: status = %d, want 400", w.Code)
	}
}

// authorQuiz fills one complete question through the service directly.
func authorQuiz(t *testing.T, svc *services.GameService) *models.SessionState {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	q, err := svc.AddQuestion(ctx)
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	svc.UpdateQuestion(ctx, q.ID, "text", "What color is the sky?")
	svc.UpdateQuestion(ctx, q.ID, "answer-0", "Blue")
	svc.UpdateQuestion(ctx, q.ID, "answer-1", "Green")
	svc.UpdateQuestion(ctx, q.ID, "answer-2", "Red")
	svc.UpdateQuestion(ctx, q.ID, "answer-3", "Yellow")
	svc.UpdateQuestion(ctx, q.ID, "correct", "0")

	state, err := svc.ActiveState(ctx)
	if err != nil {
		t.Fatalf("ActiveState: %v", err)
	}
	return state
}

func TestPollingJoinAndAnswerFlow(t *testing.T) {
	router, svc := newTestRouter(t)
	state := authorQuiz(t, svc)

	// Unknown PIN is a 404 and never touches the session.
	w := doJSON(router, http.MethodPost, "/api/games/000000/join", gin.H{"name": "ada"})
	if w.Code != http.StatusNotFound {
		t.Errorf("join unknown pin: status = %d, want 404", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/games/"+state.Pin+"/join", gin.H{"name": "ada"})
	if w.Code != http.StatusOK {
		t.Fatalf("join status = %d, body %s", w.Code, w.Body.String())
	}
	var joined models.RegistrationResultPayload
	decodeBody(t, w, &joined)
	if !joined.Success || joined.PlayerID == "" {
		t.Fatalf("join response = %+v", joined)
	}

	// Second roster slot so the question stays live after ada answers.
	doJSON(router, http.MethodPost, "/api/games/"+state.Pin+"/join", gin.H{"name": "bob"})

	w = doJSON(router, http.MethodPost, "/api/host/start-quiz", gin.H{"password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/games/"+state.Pin+"/answer", gin.H{
		"player_id": joined.PlayerID, "answer": "A",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("answer status = %d, body %s", w.Code, w.Body.String())
	}
	var result models.AnswerResultPayload
	decodeBody(t, w, &result)
	if !result.Success || !result.IsCorrect || result.PointsEarned != 3000 {
		t.Errorf("answer result = %+v", result)
	}

	// Duplicate submission is rejected.
	w = doJSON(router, http.MethodPost, "/api/games/"+state.Pin+"/answer", gin.H{
		"player_id": joined.PlayerID, "answer": "B",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate answer status = %d, want 400", w.Code)
	}

	// The polling read shows the live question without the correct slot.
	w = doJSON(router, http.MethodGet, "/api/game-state?pin="+state.Pin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("game-state status = %d", w.Code)
	}
	var view models.GameStatePayload
	decodeBody(t, w, &view)
	if view.Phase != models.PhaseQuestion || view.Question == nil || view.CorrectSlot != nil {
		t.Errorf("game-state view = %+v", view)
	}
	if view.PlayerCount != 2 {
		t.Errorf("player count = %d, want 2", view.PlayerCount)
	}

	// The session token from the share link resolves too.
	w = doJSON(router, http.MethodGet, "/api/game-state?session_token="+state.Token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("game-state by token status = %d", w.Code)
	}
	if w := doJSON(router, http.MethodGet, "/api/game-state?pin=000000", nil); w.Code != http.StatusNotFound {
		t.Errorf("game-state unknown pin status = %d, want 404", w.Code)
	}
}

func TestHostGameStateExposesAnswers(t *testing.T) {
	router, svc := newTestRouter(t)
	authorQuiz(t, svc)

	w := doJSON(router, http.MethodGet, "/api/host/game-state?password="+testPassword, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state models.SessionState
	decodeBody(t, w, &state)
	if len(state.Questions) != 1 || state.Questions[0].CorrectSlot != 0 {
		t.Errorf("host state = %+v", state)
	}
	if state.Token == "" {
		t.Error("host state missing the session token")
	}
}

func TestJoinQR(t *testing.T) {
	router, svc := newTestRouter(t)
	state := authorQuiz(t, svc)

	w := doJSON(router, http.MethodGet, "/api/games/"+state.Pin+"/qr", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty QR image")
	}

	if w := doJSON(router, http.MethodGet, "/api/games/000000/qr", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown pin status = %d, want 404", w.Code)
	}
}
