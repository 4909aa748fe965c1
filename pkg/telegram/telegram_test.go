// Package telegram 告警机器人单元测试
package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyToken(t *testing.T) {
	_, err := New("", 1)
	assert.Error(t, err)
}

func TestClient_Alert(t *testing.T) {
	var (
		mu     sync.Mutex
		path   string
		chatID string
		text   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		mu.Lock()
		path = r.URL.Path
		chatID = r.FormValue("chat_id")
		text = r.FormValue("text")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-100,"type":"group"}}}`))
	}))
	defer srv.Close()

	client, err := New("123:abc", -100, bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, client.Alert(context.Background(), "Booking #42 needs a refund"))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasSuffix(path, "/sendMessage"))
	assert.Equal(t, "-100", chatID)
	assert.Equal(t, "Booking #42 needs a refund", text)
}

func TestClient_AlertFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	client, err := New("123:abc", 1, bot.WithServerURL(srv.URL))
	require.NoError(t, err)
	assert.Error(t, client.Alert(context.Background(), "x"))
}

func TestMockAlerter(t *testing.T) {
	m := NewMockAlerter()
	require.NoError(t, m.Alert(context.Background(), "a"))
	require.NoError(t, m.Alert(context.Background(), "b"))
	assert.Equal(t, []string{"a", "b"}, m.Alerts())
}
