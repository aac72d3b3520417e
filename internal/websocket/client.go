package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 读超时时间
	pongWait = 60 * time.Second

	// ping 周期 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024
)

// Client 任务事件订阅客户端
// 除项目维度外还携带可选的阶段过滤:只订阅 draft 或 applied
// 阶段的事件,Hub 分发时据此过滤
type Client struct {
	// ID 客户端 ID
	ID string

	// ProjectID 订阅的项目 ID,Hub 按此分组
	ProjectID string

	// Send 待推送的事件,由 Hub 写入
	Send chan []byte

	hub  *Hub
	conn *websocket.Conn

	// stages 订阅的任务阶段,空表示订阅全部阶段
	stages map[string]bool
}

// NewClient 创建订阅客户端
// stages 为空时客户端接收项目内全部阶段的事件
func NewClient(id, projectID string, stages []string, hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		ID:        id,
		ProjectID: projectID,
		Send:      make(chan []byte, 256),
		hub:       hub,
		conn:      conn,
	}
	if len(stages) > 0 {
		c.stages = make(map[string]bool, len(stages))
		for _, s := range stages {
			c.stages[s] = true
		}
	}
	return c
}

// wants 判断事件是否在客户端的订阅范围内
func (c *Client) wants(event *TaskEvent) bool {
	if c.stages == nil {
		return true
	}
	return c.stages[event.Stage]
}

// Serve 启动读写循环
func (c *Client) Serve() {
	go c.writeLoop()
	go c.readLoop()
}

// readLoop 读取循环
// 事件流是单向的,读取只用于检测连接关闭和响应 pong
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			return
		}
	}
}

// writeLoop 写入循环
// 周期性发送 ping 保持连接,Send 关闭时下发 close 帧
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 注销了客户端
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
