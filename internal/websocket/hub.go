package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// 任务事件类型
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskApplied = "task.applied"
	EventTaskDeleted = "task.deleted"
)

// TaskEvent 任务生命周期事件
type TaskEvent struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id"`
	TaskID    string    `json:"task_id"`
	Code      string    `json:"code"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub 任务事件广播中心
// 按项目维度分发事件,分发时再按客户端的阶段订阅过滤
type Hub struct {
	// clients 按项目分组的在线客户端
	clients map[string]map[*Client]bool

	// broadcast 待分发的事件
	broadcast chan *TaskEvent

	// Register 客户端注册
	Register chan *Client

	// Unregister 客户端注销
	Unregister chan *Client
}

// NewHub 创建广播中心
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *TaskEvent, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish 发布任务事件
// 非阻塞,广播队列满时丢弃事件
func (h *Hub) Publish(event *TaskEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("websocket: broadcast queue full, dropping event %s for task %s", event.Type, event.TaskID)
	}
}

// Run 运行事件分发循环
// 在独立的 goroutine 中调用
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.ProjectID] == nil {
				h.clients[client.ProjectID] = make(map[*Client]bool)
			}
			h.clients[client.ProjectID][client] = true

		case client := <-h.Unregister:
			if clients, ok := h.clients[client.ProjectID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.ProjectID)
					}
				}
			}

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			for client := range h.clients[event.ProjectID] {
				if !client.wants(event) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// 发送缓冲已满,视为客户端掉线
					delete(h.clients[event.ProjectID], client)
					close(client.Send)
				}
			}
		}
	}
}
