package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc, dryRun bool) *Telegram {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTelegram(TelegramConfig{
		BotToken: "test-token",
		BaseURL:  server.URL,
		Timeout:  5 * time.Second,
		DryRun:   dryRun,
	})
}

func okResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

func TestSendText(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		okResponse(w)
	}, false)

	err := notifier.SendText(context.Background(), "12345", "#Research\nTLDR:\n- пункт")
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "12345", gotBody["chat_id"])
	assert.Contains(t, gotBody["text"], "TLDR:")
}

func TestSendTextRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		okResponse(w)
	}, false)

	err := notifier.SendText(context.Background(), "12345", "msg")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendTextDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}, false)

	err := notifier.SendText(context.Background(), "12345", "msg")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendTextAPILevelRejection(t *testing.T) {
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"description": "message is too long",
		})
	}, false)

	err := notifier.SendText(context.Background(), "12345", strings.Repeat("x", 5000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is too long")
}

func TestSendDocument(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "Research_2024-01-01_report.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# report"), 0o644))

	var gotPath, gotChatID, gotFilename string
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotChatID = r.FormValue("chat_id")

		_, header, err := r.FormFile("document")
		require.NoError(t, err)
		gotFilename = header.Filename
		okResponse(w)
	}, false)

	err := notifier.SendDocument(context.Background(), "12345", docPath)
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendDocument", gotPath)
	assert.Equal(t, "12345", gotChatID)
	assert.Equal(t, "Research_2024-01-01_report.md", gotFilename)
}

func TestSendDocumentMissingFile(t *testing.T) {
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the file does not exist")
	}, false)

	err := notifier.SendDocument(context.Background(), "12345", "/nonexistent/file.md")
	require.Error(t, err)
}

func TestDryRunSuppressesSends(t *testing.T) {
	var calls atomic.Int32
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		okResponse(w)
	}, true)

	require.NoError(t, notifier.SendText(context.Background(), "12345", "msg"))
	require.NoError(t, notifier.SendDocument(context.Background(), "12345", "/any/path.md"))
	assert.Equal(t, int32(0), calls.Load())
}
