package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
)

func TestClient_Send(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		correctionID := int64(7)
		_ = json.NewEncoder(w).Encode(Response{Output: "Korrektur erstellt.", CorrectionID: &correctionID})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	resp, err := client.Send(context.Background(), Request{
		ExamID:    42,
		TeacherID: 3,
		Message:   "Bitte korrigieren.",
		Mode:      ModeCorrection,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), got.ExamID)
	assert.Equal(t, int64(3), got.TeacherID)
	assert.Equal(t, ModeCorrection, got.Mode)
	assert.Nil(t, got.CorrectionID)

	assert.Equal(t, "Korrektur erstellt.", resp.Output)
	require.NotNil(t, resp.CorrectionID)
	assert.Equal(t, int64(7), *resp.CorrectionID)
}

func TestClient_Send_CorrectionIDForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.CorrectionID)
		assert.Equal(t, int64(11), *req.CorrectionID)
		_ = json.NewEncoder(w).Encode(Response{Output: "ok"})
	}))
	defer srv.Close()

	correctionID := int64(11)
	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Send(context.Background(), Request{ExamID: 1, TeacherID: 1, Mode: ModeChat, CorrectionID: &correctionID})
	require.NoError(t, err)
}

func TestClient_Send_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream model unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Send(context.Background(), Request{ExamID: 1, TeacherID: 1, Mode: ModeChat})
	assert.ErrorIs(t, err, apperrors.ErrWebhookFailed)
}

func TestClient_Send_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Send(context.Background(), Request{ExamID: 1, TeacherID: 1, Mode: ModeChat})
	assert.ErrorIs(t, err, apperrors.ErrWebhookFailed)
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Send(context.Background(), Request{ExamID: 1, TeacherID: 1, Mode: ModeChat})
	assert.ErrorIs(t, err, apperrors.ErrWebhookFailed)
}
