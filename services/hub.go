package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"partyquiz/models"

	"github.com/gorilla/websocket"
)

// Hub fans session events out to websocket clients (the push strategy) and to
// in-process subscribers. It implements Broadcaster for the game service.
type Hub struct {
	service *GameService

	mu          sync.RWMutex
	clients     map[*Client]bool
	subscribers map[string]map[chan models.Event]struct{}

	register   chan *Client
	unregister chan *Client
}

// Client is one websocket participant. playerID stays empty until the
// connection registers a player; isHost marks the host dashboard connection.
type Client struct {
	hub        *Hub
	socket     *websocket.Conn
	send       chan []byte
	pin        string
	playerID   string
	playerName string
	isHost     bool
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type registerPayload struct {
	PlayerName   string `json:"player_name"`
	Pin          string `json:"pin"`
	SessionToken string `json:"session_token"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

func NewHub(service *GameService) *Hub {
	return &Hub{
		service:     service,
		clients:     make(map[*Client]bool),
		subscribers: make(map[string]map[chan models.Event]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client connected to session %s (host=%v) - total clients: %d", client.pin, client.isHost, h.clientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			wasHost := false
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				wasHost = client.isHost
			}
			h.mu.Unlock()
			log.Printf("Client disconnected from session %s - total clients: %d", client.pin, h.clientCount())

			if wasHost {
				h.service.HandleHostDisconnect(client.pin)
			}
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish delivers an event to every connection and subscriber of the
// session. Targeted events (event.To set) reach only that player.
func (h *Hub) Publish(pin string, event models.Event) {
	data, err := json.Marshal(models.Event{Type: event.Type, Payload: event.Payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	for client := range h.clients {
		if client.pin != pin {
			continue
		}
		if event.To != "" && client.playerID != event.To {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}

	for ch := range h.subscribers[pin] {
		if event.To != "" {
			continue
		}
		select {
		case ch <- event:
		default:
			// Drop the oldest pending event rather than block the publisher.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
	h.mu.Unlock()
}

// Subscribe returns a channel of broadcast events for a session. The cancel
// function must be called to release the subscription.
func (h *Hub) Subscribe(pin string) (<-chan models.Event, func()) {
	ch := make(chan models.Event, 16)

	h.mu.Lock()
	if h.subscribers[pin] == nil {
		h.subscribers[pin] = make(map[chan models.Event]struct{})
	}
	h.subscribers[pin][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[pin]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, pin)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// RegisterClient attaches an upgraded websocket connection to the hub and
// starts its pumps. The initial game-state sync goes out immediately.
func (h *Hub) RegisterClient(conn *websocket.Conn, pin, playerID string, isHost bool) *Client {
	client := &Client{
		hub:      h,
		socket:   conn,
		send:     make(chan []byte, 256),
		pin:      pin,
		playerID: playerID,
		isHost:   isHost,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	client.sendGameState()
	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg wsMessage) {
	ctx := context.Background()

	switch msg.Type {
	case "register-player":
		var payload registerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendEvent(models.EventRegistrationResult, models.RegistrationResultPayload{Success: false, Error: "invalid payload"})
			return
		}
		player, err := c.hub.service.RegisterPlayer(ctx, payload.Pin, payload.SessionToken, payload.PlayerName)
		if err != nil {
			c.sendEvent(models.EventRegistrationResult, models.RegistrationResultPayload{Success: false, Error: err.Error()})
			return
		}
		c.hub.mu.Lock()
		c.playerID = player.ID
		c.playerName = player.Name
		c.hub.mu.Unlock()
		c.sendEvent(models.EventRegistrationResult, models.RegistrationResultPayload{
			Success:    true,
			PlayerID:   player.ID,
			PlayerName: player.Name,
		})

	case "submit-answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendEvent(models.EventAnswerResult, models.AnswerResultPayload{Success: false, Error: "invalid payload"})
			return
		}
		if _, err := c.hub.service.SubmitAnswer(ctx, c.pin, c.playerID, payload.Answer); err != nil {
			c.sendEvent(models.EventAnswerResult, models.AnswerResultPayload{Success: false, Error: err.Error()})
		}
		// The success reply arrives as a targeted answer-result broadcast.

	case "request-game-state":
		c.sendGameState()

	case "ping":
		c.sendEvent("pong", nil)

	default:
		log.Printf("Unknown message type %q from session %s", msg.Type, c.pin)
	}
}

func (c *Client) sendGameState() {
	state, err := c.hub.service.FindByPin(context.Background(), c.pin)
	if err != nil {
		return
	}
	c.sendEvent(models.EventGameState, c.hub.service.GameStateView(state))
}

func (c *Client) sendEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(models.Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
