package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	var received sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient("test-token", "12345", WithBaseURL(server.URL))
	err := c.Notify(context.Background(), "*Scan complete*")
	require.NoError(t, err)

	assert.Equal(t, "12345", received.ChatID)
	assert.Equal(t, "*Scan complete*", received.Text)
	assert.Equal(t, "Markdown", received.ParseMode)
}

func TestNotifyUnconfiguredIsNoOp(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient("", "", WithBaseURL(server.URL))
	assert.NoError(t, c.Notify(context.Background(), "ignored"))
	assert.Equal(t, 0, calls)
}

func TestNotifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient("test-token", "12345", WithBaseURL(server.URL))
	assert.Error(t, c.Notify(context.Background(), "message"))
}
