package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrisgermon/form-ordering-sub000/pkg/config"
)

func TestAPIMailer_Send(t *testing.T) {
	var got sendRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sendResponse{ID: "msg_123"})
	}))
	defer srv.Close()

	m := NewAPIMailer(&config.MailConfig{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		FromAddress: "orders@example.com",
	}, zap.NewNop())

	err := m.Send(context.Background(), &Message{
		To:      []string{"print@brand.example.com"},
		Cc:      []string{"jane@example.com"},
		Subject: "New printing order",
		HTML:    "<p>Order received</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "orders@example.com", got.From)
	assert.Equal(t, []string{"print@brand.example.com"}, got.To)
	assert.Equal(t, []string{"jane@example.com"}, got.Cc)
	assert.Equal(t, "New printing order", got.Subject)
	assert.Equal(t, "<p>Order received</p>", got.HTML)
}

func TestAPIMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid from address"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m := NewAPIMailer(&config.MailConfig{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		FromAddress: "orders@example.com",
	}, zap.NewNop())

	err := m.Send(context.Background(), &Message{
		To:      []string{"print@brand.example.com"},
		Subject: "New printing order",
		HTML:    "<p>Order received</p>",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestAPIMailer_NoRecipients(t *testing.T) {
	m := NewAPIMailer(&config.MailConfig{BaseURL: "http://unused.invalid"}, zap.NewNop())

	err := m.Send(context.Background(), &Message{Subject: "x"})
	assert.Error(t, err)
}

func TestNopMailer_DropsMail(t *testing.T) {
	m := NewNopMailer(zap.NewNop())
	err := m.Send(context.Background(), &Message{To: []string{"print@brand.example.com"}})
	assert.NoError(t, err)
}
