// Package hub fans out gesture events to WebSocket clients and feeds their
// inbound frames to a handler.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultMaxMessageBytes = 1024
	DefaultSendBuffer      = 32
	DefaultBroadcastBuffer = 256

	readBufferSize  = 1024
	writeBufferSize = 1024
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
)

var (
	ErrClientClosed = errors.New("client closed")
	ErrSlowClient   = errors.New("client send buffer full")
	ErrHubBusy      = errors.New("broadcast queue full")
)

// MessageHandler is called for every inbound text frame, in order per client.
type MessageHandler func(ctx context.Context, c *Client, msg []byte)

type Config struct {
	MaxMessageBytes int64
	SendBuffer      int
	BroadcastBuffer int
}

type Hub struct {
	logger    *zap.Logger
	cfg       Config
	onMessage MessageHandler
	upgrader  websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func New(logger *zap.Logger, cfg Config, onMessage MessageHandler) *Hub {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = DefaultBroadcastBuffer
	}
	if onMessage == nil {
		onMessage = func(context.Context, *Client, []byte) {}
	}

	return &Hub{
		logger:    logger,
		cfg:       cfg,
		onMessage: onMessage,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, cfg.BroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.clientsMu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.close()
			}
			h.clientsMu.Unlock()
			return

		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.clientsMu.Unlock()
			h.logger.Info("client connected",
				zap.String("clientID", c.id),
				zap.String("remoteAddr", c.remoteAddr),
				zap.Int("clients", count))

		case c := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
			}
			count := len(h.clients)
			h.clientsMu.Unlock()
			h.logger.Info("client disconnected", zap.String("clientID", c.id), zap.Int("clients", count))

		case msg := <-h.broadcast:
			h.clientsMu.Lock()
			for c := range h.clients {
				if err := c.enqueue(msg); err != nil {
					h.logger.Warn("dropping slow client", zap.String("clientID", c.id))
					delete(h.clients, c)
					c.close()
				}
			}
			h.clientsMu.Unlock()
		}
	}
}

// Broadcast queues v for every connected client without blocking.
func (h *Hub) Broadcast(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		return ErrHubBusy
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	select {
	case <-h.done:
		conn.Close()
		return
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		hub:        h,
		conn:       conn,
		id:         uuid.NewString(),
		remoteAddr: r.RemoteAddr,
		send:       make(chan []byte, h.cfg.SendBuffer),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	// register is unbuffered, so a send only completes while Run is receiving.
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		cancel()
		return
	}

	go c.writePump()
	go c.readPump()
}
