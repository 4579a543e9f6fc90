package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasocr/wasl/internal/testutil"
)

// mockWSConn records the frames the send helpers write.
type mockWSConn struct {
	sent []sentFrame
}

type sentFrame struct {
	messageType int
	data        []byte
}

func (m *mockWSConn) WriteMessage(messageType int, data []byte) error {
	m.sent = append(m.sent, sentFrame{messageType: messageType, data: data})
	return nil
}

func TestSendWSProgress(t *testing.T) {
	srv := newTestServer(t)
	conn := &mockWSConn{}

	srv.sendWSProgress(conn, "extracting", "assoc_receipt")

	require.Len(t, conn.sent, 1)
	assert.Equal(t, websocket.TextMessage, conn.sent[0].messageType)

	var frame wsProgress
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &frame))
	assert.Equal(t, "progress", frame.Type)
	assert.Equal(t, "extracting", frame.Stage)
	assert.Equal(t, "assoc_receipt", frame.Detail)
}

func TestSendWSError(t *testing.T) {
	srv := newTestServer(t)
	conn := &mockWSConn{}

	srv.sendWSError(conn, "no template_id provided")

	require.Len(t, conn.sent, 1)

	var frame wsResult
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &frame))
	assert.Equal(t, "error", frame.Type)
	assert.False(t, frame.Success)
	assert.Equal(t, "no template_id provided", frame.Error)
}

func TestRunWSExtraction(t *testing.T) {
	srv := newTestServer(t)
	conn := &mockWSConn{}

	cfg := testutil.DefaultDocumentConfig()
	cfg.Size = testutil.PageSize{Width: 64, Height: 48}
	srv.runWSExtraction(context.Background(), conn, testutil.RenderDocument(cfg), "assoc_receipt")

	require.Len(t, conn.sent, 2, "one progress frame then the result")

	var progress wsProgress
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &progress))
	assert.Equal(t, "extracting", progress.Stage)

	var result wsResult
	require.NoError(t, json.Unmarshal(conn.sent[1].data, &result))
	assert.Equal(t, "result", result.Type)
	assert.True(t, result.Success)
	require.NotNil(t, result.Result)
	assert.Len(t, result.Result.Fields, 2)
	assert.Empty(t, result.Missing)
}

func TestRunWSExtractionUnknownTemplate(t *testing.T) {
	srv := newTestServer(t)
	conn := &mockWSConn{}

	cfg := testutil.DefaultDocumentConfig()
	cfg.Size = testutil.PageSize{Width: 64, Height: 48}
	srv.runWSExtraction(context.Background(), conn, testutil.RenderDocument(cfg), "cin_front")

	require.Len(t, conn.sent, 2)

	var result wsResult
	require.NoError(t, json.Unmarshal(conn.sent[1].data, &result))
	assert.Equal(t, "error", result.Type)
	assert.Contains(t, result.Error, "cin_front")
}

// readFrame reads the next text frame into v.
func readFrame(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestExtractWebSocketEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/extract"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"template_id":"assoc_receipt"}`)))

	var progress wsProgress
	readFrame(t, conn, &progress)
	assert.Equal(t, "progress", progress.Type)
	assert.Equal(t, "awaiting_image", progress.Stage)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, pageBytes(t)))

	readFrame(t, conn, &progress)
	assert.Equal(t, "extracting", progress.Stage)

	var result wsResult
	readFrame(t, conn, &result)
	assert.Equal(t, "result", result.Type)
	assert.True(t, result.Success)
	require.NotNil(t, result.Result)
	assert.True(t, result.Result.Fields["title.fr"].Valid)
}

func TestExtractWebSocketRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/extract"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	// Unknown template ids are rejected before any image is read.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"template_id":"cin_front"}`)))

	var frame wsResult
	readFrame(t, conn, &frame)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Error, "cin_front")

	// The connection survives and serves the next request.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{}`)))
	readFrame(t, conn, &frame)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Error, "template_id")
}
