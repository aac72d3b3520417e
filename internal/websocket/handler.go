package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dfops/collect-gin/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 跨域控制由网关层负责
		return true
	},
}

// Handler 任务事件订阅入口
// 客户端连接后收到所属项目内任务的生命周期事件,
// 可通过 stage 查询参数(可重复)过滤为只订阅指定阶段
func Handler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("project")
		if projectID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project is required"})
			return
		}

		stages := c.QueryArray("stage")
		for _, s := range stages {
			if !model.TaskStage(s).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage: " + s})
				return
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		client := NewClient(uuid.NewString(), projectID, stages, hub, conn)
		hub.Register <- client
		client.Serve()
	}
}
