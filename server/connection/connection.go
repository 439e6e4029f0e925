package connection

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// State tracks where a connection is in its lifecycle.
type State string

const (
	StateConnecting   State = "connecting"
	StateLoggingIn    State = "logging_in"
	StateWaiting      State = "waiting"
	StatePlaying      State = "playing"
	StateDisconnected State = "disconnected"
)

// ErrRosterFull is returned when a connection arrives after the roster
// already filled. The connection is rejected and closed.
var ErrRosterFull = errors.New("connection: roster already full")

// Client represents one connected player.
type Client struct {
	ID       string
	Transport
	Nickname  string
	PlayerIdx int // index into the room's players; -1 until the game starts

	mu    sync.Mutex
	state State
}

// NewClient wraps a transport into a freshly connected client.
func NewClient(t Transport) *Client {
	return &Client{
		ID:        uuid.NewString(),
		Transport: t,
		PlayerIdx: -1,
		state:     StateConnecting,
	}
}

// State returns the connection's lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState moves the connection to a new lifecycle state.
func (c *Client) SetState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Manager holds the roster of connections. Before the game starts,
// joining and leaving reshape the roster freely; once started, the join
// order is frozen into player indices and departures only mark the slot
// disconnected so indices never shift.
type Manager struct {
	mu      sync.Mutex
	limit   int
	clients []*Client
	started bool
}

// NewManager creates a roster manager for the configured player count.
func NewManager(limit int) *Manager {
	return &Manager{limit: limit}
}

// Add registers a new connection. It fails with ErrRosterFull once the
// game has started or the configured player count is already connected.
func (m *Manager) Add(c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started || len(m.clients) >= m.limit {
		return ErrRosterFull
	}
	m.clients = append(m.clients, c)
	return nil
}

// Remove drops a connection. Before the game starts the slot is freed for
// a later joiner; afterwards the slot stays occupied (the room keeps its
// turn rotation entry) and the client is only marked disconnected.
func (m *Manager) Remove(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.SetState(StateDisconnected)
	if m.started {
		return
	}
	for i, existing := range m.clients {
		if existing == c {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return
		}
	}
}

// SetNickname records a client's chosen name and reports whether the
// roster is now complete: every slot filled and every member logged in.
func (m *Manager) SetNickname(c *Client, nickname string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.Nickname = nickname
	if len(m.clients) < m.limit {
		return false
	}
	for _, existing := range m.clients {
		if existing.Nickname == "" {
			return false
		}
	}
	return true
}

// Start freezes the roster: join order becomes the player index, and the
// nickname list is returned index-aligned for the START broadcast.
func (m *Manager) Start() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = true
	names := make([]string, len(m.clients))
	for i, c := range m.clients {
		c.PlayerIdx = i
		names[i] = c.Nickname
	}
	return names
}

// Clients returns a copy of the current roster.
func (m *Manager) Clients() []*Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Client, len(m.clients))
	copy(out, m.clients)
	return out
}

// Count returns the number of roster slots currently occupied.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// CloseAll closes every transport, unblocking any reader stuck without a
// deadline. Used during shutdown.
func (m *Manager) CloseAll() {
	for _, c := range m.Clients() {
		c.Close()
	}
}
