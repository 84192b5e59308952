package wsjudge

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/criyle/go-static-judge/cmd/go-static-judge/model"
	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/rule"
	"github.com/criyle/go-static-judge/store"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestWebSocketSubmit(t *testing.T) {
	logger := zaptest.NewLogger(t)
	w := worker.New(worker.Config{
		Engine:      judge.New(rule.Default()),
		Ledger:      submission.NewLedger(store.NewMemoryStore()),
		Parallelism: 2,
		Logger:      logger,
	})
	w.Start()
	defer w.Shutdown()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	// connection goroutines outlive the test, they must not log through zaptest
	New(w, zap.NewNop()).Register(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	requests := []model.Request{
		{RequestID: "ok", ProjectType: "basics", TaskID: 1, Code: "const app = express(); app.get('/', ...); app.get('/health', ...); export default app;"},
		{RequestID: "missing", ProjectType: "basics", TaskID: 1},
	}
	for _, r := range requests {
		if err := conn.WriteJSON(r); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got := make(map[string]model.Response)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for range requests {
		var res model.Response
		if err := conn.ReadJSON(&res); err != nil {
			t.Fatalf("read: %v", err)
		}
		got[res.RequestID] = res
	}

	if ok := got["ok"]; !ok.AllPassed || ok.TestsTotal != 5 || len(ok.Results) != 5 || ok.ErrorMsg != "" {
		t.Errorf("unexpected response %+v", ok)
	}
	if missing := got["missing"]; missing.ErrorMsg == "" || missing.SubmissionID != "" {
		t.Errorf("expected error response, got %+v", missing)
	}
}
