package notification

import (
	"sync"

	"go.uber.org/zap"
)

// Hub memegang koneksi WebSocket aktif per company dan menyebarkan payload
// notifikasi ke semuanya. Koneksi dengan buffer penuh dilepas, bukan
// ditunggu; notifikasi bersifat best-effort.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*hubClient]struct{}
	logger  *zap.Logger
}

type hubClient struct {
	companyID string
	send      chan []byte
}

const clientSendBuffer = 16

func NewHub(logger ...*zap.Logger) *Hub {
	l := zap.L().Named("notification.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.hub")
	}
	return &Hub{
		clients: make(map[string]map[*hubClient]struct{}),
		logger:  l,
	}
}

func (h *Hub) register(companyID string) *hubClient {
	client := &hubClient{
		companyID: companyID,
		send:      make(chan []byte, clientSendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[companyID] == nil {
		h.clients[companyID] = make(map[*hubClient]struct{})
	}
	h.clients[companyID][client] = struct{}{}
	return client
}

func (h *Hub) unregister(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.companyID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.companyID)
	}
}

// Broadcast mengirim payload ke seluruh koneksi company tersebut. Klien yang
// tidak sanggup menerima (buffer penuh) dilepas dari hub.
func (h *Hub) Broadcast(companyID string, payload []byte) {
	h.mu.RLock()
	stale := make([]*hubClient, 0)
	for client := range h.clients[companyID] {
		select {
		case client.send <- payload:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.logger.Warn("dropping slow notification client",
			zap.String("company_id", companyID),
		)
		h.unregister(client)
	}
}
