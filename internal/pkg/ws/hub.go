package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/pubsub"
)

const defaultWriteWait = 10 * time.Second

// Message 推送给浏览器的帧
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client 一个浏览器连接，写入串行化
type Client struct {
	UserID int64
	Conn   *websocket.Conn

	wmu sync.Mutex
}

func NewClient(userID int64, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn}
}

func (c *Client) write(data []byte, deadline time.Time) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.Conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Ping 心跳，与通知写入共用写锁
func (c *Client) Ping(deadline time.Time) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.Conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// Hub 本机在线连接，按用户分组；同一用户可在多个终端同时在线
type Hub struct {
	mu        sync.RWMutex
	byUser    map[int64]map[*Client]struct{}
	writeWait time.Duration
}

func NewHub() *Hub {
	return &Hub{
		byUser:    make(map[int64]map[*Client]struct{}),
		writeWait: defaultWriteWait,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.byUser[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.byUser[c.UserID] = set
	}
	set[c] = struct{}{}
	n := len(set)
	h.mu.Unlock()

	logger.Debug("ws client registered", "user_id", c.UserID, "user_conns", n)
}

// Unregister 移除连接，返回连接此前是否在线
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.byUser[c.UserID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.byUser, c.UserID)
	}
	logger.Debug("ws client unregistered", "user_id", c.UserID)
	return true
}

func (h *Hub) clientsOf(userID int64) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.byUser[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Notify 把通知写给用户的全部连接，返回成功送达的连接数
// 写失败的连接会被移除并关闭，由其读循环收尾
func (h *Hub) Notify(n *pubsub.Notification) (int, error) {
	clients := h.clientsOf(n.UserID)
	if len(clients) == 0 {
		return 0, nil
	}

	data, err := json.Marshal(&Message{Type: n.Type, Data: n.Data})
	if err != nil {
		return 0, fmt.Errorf("encode notification %s: %w", n.Type, err)
	}

	delivered := 0
	deadline := time.Now().Add(h.writeWait)
	for _, c := range clients {
		if err := c.write(data, deadline); err != nil {
			logger.Warn("ws write failed, dropping client", "user_id", n.UserID, "type", n.Type, "error", err)
			h.Unregister(c)
			_ = c.Conn.Close()
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Forward 订阅 Redis 上的通知并推送到本机连接，直到 ctx 取消
func (h *Hub) Forward(ctx context.Context, sub *pubsub.Subscriber) error {
	return sub.Subscribe(ctx, func(n *pubsub.Notification) {
		if _, err := h.Notify(n); err != nil {
			logger.Warn("forward notification failed", "user_id", n.UserID, "error", err)
		}
	})
}

// Online 用户在本机的连接数
func (h *Hub) Online(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// Len 本机连接总数
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.byUser {
		total += len(set)
	}
	return total
}
