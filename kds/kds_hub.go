package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// Event types
const (
	EventOrderCreated  = "order_created"
	EventOrderUpdate   = "order_update"
	EventStaffNotif    = "staff_notification"
	EventStockProduced = "stock_produced"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected order-board screen (cashier, admin) and fans
// messages out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// RegisterClient -> menambahkan connection ke set dengan role
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount returns the number of connected screens.
func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// OrderCommitted announces a new order on the board.
func (h *Hub) OrderCommitted(order models.Order) {
	h.Broadcast(Message{
		Event: EventOrderCreated,
		Data:  order,
	})
}

// OrderStatusChanged announces a status move.
func (h *Hub) OrderStatusChanged(order models.Order) {
	h.Broadcast(Message{
		Event: EventOrderUpdate,
		Data: map[string]interface{}{
			"id":     order.ID,
			"number": order.Number,
			"status": order.Status,
		},
	})
}

// BroadcastStaffNotification -> notifikasi untuk staff
func (h *Hub) BroadcastStaffNotification(message string) {
	h.Broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// BroadcastProduction tells the board that a batch reached the shelf.
func (h *Hub) BroadcastProduction(data interface{}) {
	h.Broadcast(Message{
		Event: EventStockProduced,
		Data:  data,
	})
}

// Broadcast sends msg to every client; clients that fail to receive it are
// dropped. A nil hub discards the message.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.WithFields(logrus.Fields{
		"event":   msg.Event,
		"clients": len(h.clients),
	}).Debug("broadcasting")

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("Error sending message to %s client: %v", role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
