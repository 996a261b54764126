package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// MessageTypeSnapshot carries the session's form, quote and validation
	MessageTypeSnapshot MessageType = "snapshot"
	// MessageTypeResult carries the outcome of a submit sent over the socket
	MessageTypeResult MessageType = "submission_result"
	// MessageTypeInventoryChanged tells watchers of an item to re-check capacity
	MessageTypeInventoryChanged MessageType = "inventory_changed"
	MessageTypeError            MessageType = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	ItemKey   string      `json:"itemKey,omitempty"`
	Capacity  *int        `json:"capacity,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func newMessage(t MessageType) *Message {
	return &Message{Type: t, Timestamp: time.Now().UnixMilli()}
}

// Hub fans item-level notices out to the sockets watching that item
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	direct     chan directMessage
	counts     chan countRequest
	logger     zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

type directMessage struct {
	client *Client
	data   []byte
}

type countRequest struct {
	itemKey string
	reply   chan int
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		direct:     make(chan directMessage, 64),
		counts:     make(chan countRequest),
		logger:     logger.With().Str("component", "ws-hub").Logger(),
		stop:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It owns the client map and returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			for key, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, key)
			}
			return

		case client := <-h.register:
			if h.clients[client.itemKey] == nil {
				h.clients[client.itemKey] = make(map[*Client]bool)
			}
			h.clients[client.itemKey][client] = true
			h.logger.Debug().Str("item", client.itemKey).Int("watchers", len(h.clients[client.itemKey])).Msg("Client registered")

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Error().Err(err).Msg("Failed to marshal message")
				continue
			}

			clients := h.clients[message.ItemKey]
			h.logger.Debug().Str("type", string(message.Type)).Str("item", message.ItemKey).Int("clients", len(clients)).Msg("Broadcasting")

			for client := range clients {
				select {
				case client.send <- data:
				default:
					h.remove(client)
				}
			}

		case dm := <-h.direct:
			if !h.clients[dm.client.itemKey][dm.client] {
				continue
			}
			select {
			case dm.client.send <- dm.data:
			default:
				h.remove(dm.client)
			}

		case req := <-h.counts:
			req.reply <- len(h.clients[req.itemKey])
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.itemKey]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.itemKey)
	}
	h.logger.Debug().Str("item", client.itemKey).Int("remaining", len(clients)).Msg("Client unregistered")
}

// Stop ends Run and closes every client's send channel
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stop:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// Send delivers a message to one client if it is still connected
func (h *Hub) Send(c *Client, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal message")
		return
	}
	select {
	case h.direct <- directMessage{client: c, data: data}:
	case <-h.stop:
	}
}

// InventoryChanged tells every socket watching the item that its capacity changed
func (h *Hub) InventoryChanged(itemKey string, capacity int) {
	msg := newMessage(MessageTypeInventoryChanged)
	msg.ItemKey = itemKey
	msg.Capacity = &capacity
	msg.Message = "Availability changed, please re-check your booking"
	select {
	case h.broadcast <- msg:
	case <-h.stop:
	}
}

// ClientCount returns the number of sockets watching an item
func (h *Hub) ClientCount(itemKey string) int {
	reply := make(chan int, 1)
	select {
	case h.counts <- countRequest{itemKey: itemKey, reply: reply}:
		return <-reply
	case <-h.stop:
		return 0
	}
}
