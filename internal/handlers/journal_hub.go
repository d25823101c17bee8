package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kouadiojose/hopefund-sub000/models"
)

// --- Variables globales ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // en développement toutes les origines sont acceptées
	},
}

// JournalHub - instance unique du hub pour toute l'application. Le flux du
// journal est en diffusion seule : les clients reçoivent les écritures au fil
// de l'eau, rien n'est attendu en retour.
var JournalHub = NewHub()

// --- Structures ---

// JournalEvent est le message poussé aux clients connectés.
type JournalEvent struct {
	Type    string                 `json:"type"`
	Payload models.AccountingEntry `json:"payload"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type Hub struct {
	clients    map[uint]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

// --- Méthodes du hub ---

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			slog.Info("Client journal connecté", "userID", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Client journal déconnecté", "userID", client.userID)

		case messageData := <-h.broadcast:
			h.sendToAll(messageData)
		}
	}
}

// BroadcastEntry pousse une écriture comptable vers tous les clients
// connectés. L'appel ne bloque jamais l'opération métier appelante.
func (h *Hub) BroadcastEntry(entry *models.AccountingEntry) {
	if entry == nil {
		return
	}

	event := JournalEvent{Type: "newEntry", Payload: *entry}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("Impossible de sérialiser l'écriture pour diffusion", "error", err)
		return
	}

	select {
	case h.broadcast <- messageBytes:
	default:
		// hub non démarré ou saturé : le flux temps réel est best-effort
	}
}

func (h *Hub) sendToAll(messageBytes []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, client := range h.clients {
		select {
		case client.send <- messageBytes:
		default:
			close(client.send)
			delete(h.clients, userID)
		}
	}
}

// --- Méthodes du client et endpoint WebSocket ---

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Flux en diffusion seule : on ne fait que drainer pour détecter la
		// fermeture de la connexion.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Fermeture websocket inattendue", "error", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Impossible d'écrire sur la websocket", "error", err)
			return
		}
	}
}

// JournalWSEndpoint attache un client authentifié au flux temps réel du
// journal comptable.
func JournalWSEndpoint(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Impossible de passer la connexion en WebSocket", "error", err)
		return
	}

	client := &Client{
		hub:    JournalHub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID.(uint),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
