package wsjudge

import (
	"context"
	"net/http"
	"time"

	"github.com/criyle/go-static-judge/cmd/go-static-judge/model"
	"github.com/criyle/go-static-judge/worker"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Register registers web socket handle /ws
type Register interface {
	Register(gin.IRouter)
}

// New creates new websocket handle
func New(worker worker.Worker, logger *zap.Logger) Register {
	return &wsHandle{
		worker: worker,
		logger: logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type wsHandle struct {
	worker worker.Worker
	logger *zap.Logger
}

func (h *wsHandle) Register(r gin.IRouter) {
	r.GET("/ws", h.handleWS)
}

func (h *wsHandle) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}
	resultCh := make(chan model.Response, 128)
	ctx, cancel := context.WithCancel(context.Background())

	// read request
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			req := new(model.Request)
			if err := conn.ReadJSON(req); err != nil {
				h.logger.Sugar().Debug("ws read error: ", err)
				return
			}
			r := model.ConvertRequest(req)
			go func() {
				var ret worker.Response
				select {
				case ret = <-h.worker.Submit(ctx, r):
				case <-ctx.Done():
					return
				}
				resp, err := model.ConvertResponse(ret, true)
				if err != nil {
					resp = model.Response{RequestID: req.RequestID, ErrorMsg: err.Error()}
				}
				select {
				case resultCh <- resp:
				case <-ctx.Done():
				}
			}()
		}
	}()

	// write result
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case r := <-resultCh:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(r); err != nil {
					h.logger.Sugar().Warn("ws write error: ", err)
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
