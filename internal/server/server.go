// Package server hosts grid battles over WebSocket. Each connection owns one
// session, and each session runs at most one battle at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"grid-tactics/internal/config"
	"grid-tactics/internal/database"
	"grid-tactics/internal/protocol"
	"grid-tactics/pkg/maps"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Server is the battle server.
type Server struct {
	db       *database.DB
	hub      *Hub
	scenario *config.Scenario
	addr     string
	server   *http.Server
}

// Config holds server configuration.
type Config struct {
	Addr     string
	DBPath   string
	Scenario *config.Scenario // nil uses the built-in scenario
}

// New creates a new server.
func New(cfg Config) (*Server, error) {
	if err := maps.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load maps: %w", err)
	}

	scenario := cfg.Scenario
	if scenario == nil {
		scenario = config.Default()
	}
	if maps.Get(scenario.Map) == nil {
		return nil, fmt.Errorf("scenario %s: unknown map %q", scenario.ID, scenario.Map)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Server{
		db:       db,
		scenario: scenario,
		addr:     cfg.Addr,
	}
	s.hub = NewHub(s)
	return s, nil
}

// Handler returns the HTTP routes. The hub must be running (see Run).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Read-only API
	mux.HandleFunc("/api/maps", s.handleListMaps)
	mux.HandleFunc("/api/results", s.handleListResults)
	mux.HandleFunc("GET /api/battles/{id}/events", s.handleBattleEvents)

	return mux
}

// Run starts the hub loop. It returns when ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// Start starts the hub and serves HTTP until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Printf("Grid Tactics Server")
	log.Printf("  Address: http://localhost%s", s.addr)
	log.Printf("  Scenario: %s (map %s)", s.scenario.ID, s.scenario.Map)
	log.Printf("  WebSocket: ws://localhost%s/ws", s.addr)

	go s.hub.Run(context.Background())

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.hub.CloseAll()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// handleWebSocket accepts a WebSocket connection. A ?token= query parameter
// reattaches the connection to an existing commander; otherwise a new one is
// created, named by ?name=.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	commander, err := s.commanderFor(r.URL.Query().Get("token"), r.URL.Query().Get("name"))
	if err != nil {
		log.Printf("[Server] Commander lookup failed: %v", err)
		http.Error(w, "Failed to identify commander", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow all origins
	})
	if err != nil {
		log.Printf("[Server] WebSocket accept failed: %v", err)
		return
	}

	client := NewClient(s.hub, conn, commander)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) commanderFor(token, name string) (*database.Commander, error) {
	if token != "" {
		c, err := s.db.GetCommanderByToken(token)
		if err == nil {
			s.db.TouchCommander(c.ID)
			log.Printf("[Server] Commander reconnected: %s (%s)", c.Name, c.ID)
			return c, nil
		}
		if !errors.Is(err, database.ErrCommanderNotFound) {
			return nil, err
		}
	}

	if name == "" {
		name = "Commander"
	}
	c, err := s.db.CreateCommander(name)
	if err != nil {
		return nil, err
	}
	log.Printf("[Server] Created new commander: %s (%s)", c.Name, c.ID)
	return c, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	battles, finished, err := s.db.Stats()
	if err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": s.hub.Count(),
		"battles":  battles,
		"finished": finished,
	})
}

// handleListMaps returns the arenas the server can host.
func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, maps.List())
}

// handleListResults returns recently finished battles.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := s.db.ListResults(limit)
	if err != nil {
		http.Error(w, "Failed to list results", http.StatusInternalServerError)
		return
	}

	results := make([]protocol.ResultPayload, 0, len(records))
	for _, rec := range records {
		results = append(results, protocol.ResultPayload{
			BattleID:        rec.ID,
			ContextID:       rec.ContextID,
			Outcome:         rec.Outcome,
			PlayerUnitsLost: rec.PlayerUnitsLost,
			EnemyUnitsLost:  rec.EnemyUnitsLost,
			Rounds:          rec.Rounds,
		})
	}
	writeJSON(w, results)
}

// handleBattleEvents returns the recorded event log of one battle. With
// ?since=<event id> only newer events are returned.
func (s *Server) handleBattleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.db.GetBattle(id)
	if errors.Is(err, database.ErrBattleNotFound) {
		http.Error(w, "Battle not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load battle", http.StatusInternalServerError)
		return
	}

	var events []*database.EventRecord
	if v := r.URL.Query().Get("since"); v != "" {
		since, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			http.Error(w, "Invalid since", http.StatusBadRequest)
			return
		}
		events, err = s.db.GetBattleEventsSince(id, since)
	} else {
		events, err = s.db.GetBattleEvents(id)
	}
	if err != nil {
		log.Printf("[Server] Failed to read events for battle %s: %v", id, err)
		http.Error(w, "Failed to read events", http.StatusInternalServerError)
		return
	}

	out := protocol.EventLogPayload{
		BattleID: rec.ID,
		MapID:    rec.MapID,
		Status:   string(rec.Status),
		Outcome:  rec.Outcome,
		Events:   make([]protocol.LoggedEventInfo, 0, len(events)),
	}
	for _, ev := range events {
		out.Events = append(out.Events, protocol.LoggedEventInfo{
			ID:        ev.ID,
			Type:      ev.EventType,
			Round:     ev.Round,
			Phase:     ev.Phase,
			UnitID:    ev.UnitID,
			TargetID:  ev.TargetID,
			Damage:    ev.Damage,
			Message:   ev.Message,
			CreatedAt: ev.CreatedAt.UnixMilli(),
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Hub maintains the set of connected clients.
type Hub struct {
	server *Server

	// Registered clients
	clients map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(server *Server) *Hub {
	return &Hub{
		server:     server,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			client.session.Start()
			h.sendWelcome(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case <-ctx.Done():
			h.CloseAll()
			return
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.handleDisconnect(c)
	}
}

// sendWelcome sends a welcome message to a new client.
func (h *Hub) sendWelcome(client *Client) {
	payload := protocol.WelcomePayload{
		ClientID:    client.ID,
		CommanderID: client.Commander.ID,
		Token:       client.Commander.Token,
	}
	for _, m := range maps.List() {
		payload.Maps = append(payload.Maps, protocol.MapInfo{
			ID:     m.ID,
			Name:   m.Name,
			Width:  m.Width,
			Height: m.Height,
		})
	}
	client.SendPayload(protocol.TypeWelcome, "", payload)
}

// handleDisconnect handles a client disconnecting.
func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	client.session.Close()
	client.close()
	log.Printf("[Server] Client %s disconnected", client.ID)
}

// Client represents a connected WebSocket client.
type Client struct {
	ID        string
	Commander *database.Commander

	hub     *Hub
	conn    *websocket.Conn
	send    chan *protocol.Message
	done    chan struct{}
	once    sync.Once
	session *Session
}

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
)

// NewClient creates a new client with its own session.
func NewClient(hub *Hub, conn *websocket.Conn, commander *database.Commander) *Client {
	c := &Client{
		ID:        uuid.New().String(),
		Commander: commander,
		hub:       hub,
		conn:      conn,
		send:      make(chan *protocol.Message, 256),
		done:      make(chan struct{}),
	}
	c.session = newSession(hub.server, c)
	return c
}

// Send queues a message to be sent to the client.
func (c *Client) Send(msg *protocol.Message) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		// Channel full, client too slow
		log.Printf("[Server] Client %s send buffer full, disconnecting", c.ID)
		go c.hub.Unregister(c)
	}
}

// SendPayload builds a message and queues it. replyTo, when set, is used as
// the message ID so the client can match it to its request.
func (c *Client) SendPayload(msgType protocol.MessageType, replyTo string, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("[Server] Failed to build %s message: %v", msgType, err)
		return
	}
	if replyTo != "" {
		msg.ID = replyTo
	}
	c.Send(msg)
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "")
	})
}

// ReadPump reads messages from the WebSocket and queues them on the session.
func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(maxMessageSize)

	for {
		msgType, data, err := c.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && status != -1 {
				log.Printf("[Server] WebSocket read error: %v", err)
			}
			return
		}

		// Only process text messages
		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[Server] Invalid message: %v", err)
			c.SendPayload(protocol.TypeError, "", protocol.ErrorPayload{
				Code:    protocol.ErrCodeInvalidPayload,
				Message: "message is not valid JSON",
			})
			continue
		}

		c.session.Enqueue(&msg)
	}
}

// WritePump writes queued messages to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[Server] Failed to marshal message: %v", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err = c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
