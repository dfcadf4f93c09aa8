package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/Domenick1991/expertbooking/internal/metrics"
	"github.com/Domenick1991/expertbooking/internal/notify"
	"go.uber.org/zap"
)

// Message types of the live-update channel.
const (
	MessageTypeJoinExpertRoom   = "joinExpertRoom"
	MessageTypeLeaveExpertRoom  = "leaveExpertRoom"
	MessageTypeSlotBooked       = "slotBooked"
	MessageTypeExpertSlotUpdate = "expertSlotUpdate"
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
)

// Message is the envelope written to subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func ExpertTopic(expertID string) string {
	return "expert:" + expertID
}

// Hub tracks connected clients and their topic memberships. Delivery is
// best effort: a client whose send buffer is full is disconnected.
type Hub struct {
	log     *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}
}

func NewHub(log *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		log:     log,
		metrics: m,
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetSubscribers(n)
	h.log.Debug("websocket client connected", zap.Uint64("client_id", c.id), zap.Int("total_clients", n))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	n := len(h.clients)
	h.mu.Unlock()

	if removed {
		h.metrics.SetSubscribers(n)
		h.log.Debug("websocket client disconnected", zap.Uint64("client_id", c.id), zap.Int("total_clients", n))
	}
}

// Join subscribes c to topic. Joining twice is a no-op.
func (h *Hub) Join(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.topics[topic]
	if !ok {
		members = make(map[*Client]struct{})
		h.topics[topic] = members
	}
	members[c] = struct{}{}
	c.topics[topic] = struct{}{}
}

func (h *Hub) Leave(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, topic)
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(sortedClients(h.clients), msg)
}

// Publish sends msg to the members of topic only.
func (h *Hub) Publish(topic string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(sortedClients(h.topics[topic]), msg)
}

// sendTo sends msg to c if it is still connected.
func (h *Hub) sendTo(c *Client, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.sendLocked([]*Client{c}, msg)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) TopicSize(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) Name() string { return "websocket" }

// Deliver implements notify.Sink. Only newly created bookings take a slot,
// so other event types are ignored.
func (h *Hub) Deliver(_ context.Context, ev notify.Event) error {
	if ev.Type != notify.EventBookingCreated {
		return nil
	}
	payload := ev.SlotBooked()
	h.Broadcast(Message{Type: MessageTypeSlotBooked, Data: payload})
	h.Publish(ExpertTopic(payload.ExpertID), Message{Type: MessageTypeExpertSlotUpdate, Data: payload})
	return nil
}

// Run blocks until ctx is canceled and then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	clients := sortedClients(h.clients)
	for _, c := range clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	h.metrics.SetSubscribers(0)
	h.log.Info("websocket hub stopped", zap.Int("clients_closed", len(clients)))
	return ctx.Err()
}

func (h *Hub) sendLocked(clients []*Client, msg Message) {
	var slow []*Client
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.metrics.IncDropped(h.Name())
		h.log.Warn("websocket client too slow, disconnecting", zap.Uint64("client_id", c.id), zap.String("type", msg.Type))
		h.removeLocked(c)
	}
	if len(slow) > 0 {
		h.metrics.SetSubscribers(len(h.clients))
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	for topic := range c.topics {
		h.leaveLocked(c, topic)
	}
	delete(h.clients, c)
	close(c.send)
	return true
}

func (h *Hub) leaveLocked(c *Client, topic string) {
	delete(c.topics, topic)
	members, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.topics, topic)
	}
}

// sortedClients orders by id so delivery order is deterministic.
func sortedClients(set map[*Client]struct{}) []*Client {
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

var _ notify.Sink = (*Hub)(nil)
