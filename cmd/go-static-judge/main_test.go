package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/criyle/go-static-judge/cmd/go-static-judge/config"
	"github.com/criyle/go-static-judge/store"
	"github.com/criyle/go-static-judge/submission"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTokenAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(tokenAuth("secret"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"secret", http.StatusUnauthorized},
		{"Bearer secret", http.StatusOK},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("Authorization %q: got %d, want %d", tc.header, w.Code, tc.want)
		}
	}
}

func TestRedact(t *testing.T) {
	conf := config.Config{AuthToken: "token", ArchiveSecretKey: "key", HTTPAddr: ":3001"}
	got := redact(conf)
	if got.AuthToken != "***" || got.ArchiveSecretKey != "***" || got.HTTPAddr != ":3001" {
		t.Errorf("unexpected redacted config %+v", got)
	}
	if conf.AuthToken != "token" {
		t.Error("redact modified the original config")
	}
}

func TestMetricsStore(t *testing.T) {
	ctx := context.Background()
	st := newMetricsStore(store.NewMemoryStore())
	defer st.Close()

	before := testutil.ToFloat64(storeTotalCount)
	s := &submission.Submission{TaskGroup: "basics", TaskID: 1}
	if err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	// saving the same submission again does not count twice
	if err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(storeTotalCount) - before; got != 1 {
		t.Errorf("after save: delta = %v, want 1", got)
	}

	if ok, err := st.Remove(ctx, s.ID); err != nil || !ok {
		t.Fatalf("remove: %v %v", ok, err)
	}
	if got := testutil.ToFloat64(storeTotalCount) - before; got != 0 {
		t.Errorf("after remove: delta = %v, want 0", got)
	}
}
