package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gnss_decoder/internal/config"
)

const (
	kindState      = "state"
	kindSatellites = "satellites"

	wsWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsEnvelope is pushed to every WebSocket client.
type wsEnvelope struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// Hub keeps the latest payload of each kind and fans updates out to
// WebSocket clients.
type Hub struct {
	mu     sync.RWMutex
	latest map[string]json.RawMessage

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex // each connection has its own write mutex
}

func NewHub() *Hub {
	return &Hub{
		latest:  make(map[string]json.RawMessage),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Update stores payload as the latest of its kind and broadcasts it.
// Payloads that are not valid JSON are dropped.
func (h *Hub) Update(kind string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("web: %s payload is not JSON", kind)
	}
	raw := json.RawMessage(append([]byte(nil), payload...))

	h.mu.Lock()
	h.latest[kind] = raw
	h.mu.Unlock()

	msg, err := json.Marshal(wsEnvelope{Topic: kind, Data: raw})
	if err != nil {
		return err
	}
	h.broadcast(msg)
	return nil
}

func (h *Hub) snapshot(kind string) (json.RawMessage, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	raw, ok := h.latest[kind]
	return raw, ok
}

func (h *Hub) broadcast(msg []byte) {
	h.clientsMu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, mu := range h.clients {
		conns[c] = mu
	}
	h.clientsMu.RUnlock()

	for conn, mu := range conns {
		if err := h.write(conn, mu, msg); err != nil {
			log.Printf("web: websocket write error: %v", err)
			h.remove(conn)
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, mu *sync.Mutex, msg []byte) error {
	mu.Lock()
	defer mu.Unlock()
	return writeLocked(conn, msg)
}

// writeLocked expects the connection's write mutex to be held.
func writeLocked(conn *websocket.Conn, msg []byte) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.clientsMu.Unlock()
	if ok {
		conn.Close()
	}
}

// Clients returns the number of connected WebSocket clients.
func (h *Hub) Clients() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// attach registers conn and replays the latest payloads to it. Broadcasts
// wait on the connection's write mutex until the replay is done.
func (h *Hub) attach(conn *websocket.Conn) error {
	mu := &sync.Mutex{}
	mu.Lock()
	defer mu.Unlock()

	h.clientsMu.Lock()
	h.clients[conn] = mu
	h.clientsMu.Unlock()

	for _, kind := range []string{kindState, kindSatellites} {
		raw, ok := h.snapshot(kind)
		if !ok {
			continue
		}
		msg, err := json.Marshal(wsEnvelope{Topic: kind, Data: raw})
		if err != nil {
			return err
		}
		if err := writeLocked(conn, msg); err != nil {
			return err
		}
	}
	return nil
}

// HandleWebSocket upgrades the request, sends the latest payloads and keeps
// the client registered until it disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	if err := h.attach(conn); err != nil {
		log.Printf("web: websocket initial write error: %v", err)
		h.remove(conn)
		return
	}

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(conn)
}

func (h *Hub) serveLatest(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := h.snapshot(kind)
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(raw); err != nil {
			log.Printf("web: write error: %v", err)
		}
	}
}

// Routes returns the HTTP API, the WebSocket endpoint and the static files
// under staticDir (skipped when empty).
func (h *Hub) Routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gps", h.serveLatest(kindState))
	mux.HandleFunc("/api/satellites", h.serveLatest(kindSatellites))
	mux.HandleFunc("/ws", h.HandleWebSocket)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func RunWeb() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	hub := NewHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to state and satellites, feeding the hub
	for kind, topic := range map[string]string{
		kindState:      cfg.TopicGPSState,
		kindSatellites: cfg.TopicGPSSatellites,
	} {
		kind := kind
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if err := hub.Update(kind, msg.Payload()); err != nil {
				log.Printf("web: %v", err)
			}
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to MQTT topic %s", topic)
	}

	// 3) API, WebSocket and static files from ./web as the root
	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, hub.Routes("web"))
}
