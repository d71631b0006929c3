package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/harbour/internal/audit"
	"github.com/nerrad567/harbour/internal/boat"
	"github.com/nerrad567/harbour/internal/infrastructure/config"
	"github.com/nerrad567/harbour/internal/infrastructure/database"
	"github.com/nerrad567/harbour/internal/infrastructure/logging"
	"github.com/nerrad567/harbour/internal/logbook"
	"github.com/nerrad567/harbour/internal/metrics"
	"github.com/nerrad567/harbour/internal/tower"
	"github.com/nerrad567/harbour/migrations"
)

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Host: "127.0.0.1",
		Port: 0,
		Timeouts: config.APITimeoutConfig{
			Read:  5,
			Write: 5,
			Idle:  5,
		},
	}
}

// testServer wires a server around a captain rowing a fishing boat adapter.
func testServer(t *testing.T, recorder boat.SailRecorder) (*Server, *boat.Captain) {
	t.Helper()

	captain := boat.NewCaptain(boat.NewFishingBoatAdapter(boat.FishingBoatOptions{
		Name:     "pequod",
		Recorder: recorder,
	}))

	srv, err := New(Deps{
		Config:  testAPIConfig(),
		Logger:  logging.Discard(),
		Captain: captain,
		Metrics: metrics.NewCollector(),
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, captain
}

func setupLogbook(t *testing.T) *logbook.SQLiteRepository {
	t.Helper()
	return logbook.NewSQLiteRepository(setupDB(t))
}

// setupDB opens a migrated database in a temp dir.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "api.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db.DB
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return e
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RequiresLoggerAndCaptain(t *testing.T) {
	captain := boat.NewCaptain(nil)

	if _, err := New(Deps{Captain: captain}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without captain should fail")
	}
}

func TestNew_DefaultsToSingletonTower(t *testing.T) {
	srv, _ := testServer(t, nil)
	if srv.tower != tower.GetInstance() {
		t.Error("server tower is not the singleton instance")
	}
}

// =============================================================================
// Routes
// =============================================================================

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" || body["rowing_boat"] != true {
		t.Errorf("health body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRow_Success(t *testing.T) {
	var seqs []uint64
	srv, captain := testServer(t, boat.SailRecorderFunc(func(e boat.SailEvent) error {
		seqs = append(seqs, e.Sequence)
		return nil
	}))
	h := srv.buildRouter()

	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/v1/row")
		if rec.Code != http.StatusOK {
			t.Fatalf("POST /row #%d status = %d", i+1, rec.Code)
		}
		var body RowResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Status != "rowed" {
			t.Errorf("POST /row body = %+v, err = %v", body, err)
		}
	}

	if fmt.Sprint(seqs) != "[1 2 3]" {
		t.Errorf("sequences = %v, want [1 2 3]", seqs)
	}
	if !captain.HasRowingBoat() {
		t.Error("captain lost its boat")
	}
}

func TestRow_NoRowingBoat(t *testing.T) {
	srv, captain := testServer(t, nil)
	captain.SetRowingBoat(nil)

	rec := do(t, srv.buildRouter(), http.MethodPost, "/api/v1/row")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != ErrCodeNoRowingBoat {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeNoRowingBoat)
	}
}

func TestRow_RecorderFailure(t *testing.T) {
	srv, _ := testServer(t, boat.SailRecorderFunc(func(boat.SailEvent) error {
		return errors.New("logbook full")
	}))

	rec := do(t, srv.buildRouter(), http.MethodPost, "/api/v1/row")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	e := decodeError(t, rec)
	if e.Code != ErrCodeInternal {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeInternal)
	}
	if strings.Contains(e.Message, "logbook full") {
		t.Errorf("message %q leaks the recorder error", e.Message)
	}
}

func TestRow_ErrorCarriesRequestID(t *testing.T) {
	srv, captain := testServer(t, nil)
	captain.SetRowingBoat(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/row", nil)
	req.Header.Set("X-Request-ID", "order-42")
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if e := decodeError(t, rec); e.RequestID != "order-42" {
		t.Errorf("request_id = %q, want order-42", e.RequestID)
	}
}

func TestRow_ConcurrentRequestsAreSerialised(t *testing.T) {
	const n = 32

	var (
		mu   sync.Mutex
		seqs []uint64
	)
	srv, _ := testServer(t, boat.SailRecorderFunc(func(e boat.SailEvent) error {
		mu.Lock()
		seqs = append(seqs, e.Sequence)
		mu.Unlock()
		return nil
	}))
	h := srv.buildRouter()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/row", nil))
		}()
	}
	wg.Wait()

	if len(seqs) != n {
		t.Fatalf("recorded %d sails, want %d", len(seqs), n)
	}
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("seqs[%d] = %d, want %d", i, seq, i+1)
		}
	}
}

func TestRow_WrongMethod(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/row")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestTower(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/tower")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body TowerResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != tower.GetInstance().ID().String() {
		t.Errorf("id = %q, want %q", body.ID, tower.GetInstance().ID())
	}
	if body.BuiltAt == "" {
		t.Error("built_at is empty")
	}
}

func TestLogbook_Disabled(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/logbook/pequod")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLogbook_ListsRowedSails(t *testing.T) {
	repo := setupLogbook(t)
	srv, _ := testServer(t, repo)
	srv.logbook = repo
	h := srv.buildRouter()

	for i := 0; i < 5; i++ {
		if rec := do(t, h, http.MethodPost, "/api/v1/row"); rec.Code != http.StatusOK {
			t.Fatalf("POST /row status = %d", rec.Code)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/v1/logbook/pequod?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body LogbookResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 5 {
		t.Errorf("count = %d, want 5", body.Count)
	}
	if len(body.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(body.Entries))
	}
	if body.Entries[0].Sequence != 5 || body.Entries[1].Sequence != 4 {
		t.Errorf("sequences = %d,%d, want 5,4", body.Entries[0].Sequence, body.Entries[1].Sequence)
	}
}

func TestLogbook_BadLimit(t *testing.T) {
	srv, _ := testServer(t, nil)
	srv.logbook = setupLogbook(t)

	for _, q := range []string{"abc", "0", "-3"} {
		rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/logbook/pequod?limit="+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestAudit_RecordsEveryOrder(t *testing.T) {
	srv, captain := testServer(t, nil)
	srv.audit = audit.NewSQLiteRepository(setupDB(t))
	srv.boatName = "pequod"
	h := srv.buildRouter()

	do(t, h, http.MethodPost, "/api/v1/row")
	do(t, h, http.MethodPost, "/api/v1/row")
	captain.SetRowingBoat(nil)
	do(t, h, http.MethodPost, "/api/v1/row")

	rec := do(t, h, http.MethodGet, "/api/v1/audit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var all audit.ListResult
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("total = %d, want 3", all.Total)
	}
	newest := all.Orders[0]
	if newest.Result != metrics.ResultUnbound || newest.Source != audit.SourceAPI || newest.Boat != "pequod" {
		t.Errorf("newest order = %+v", newest)
	}
	if newest.RequestID == "" || newest.Error == "" {
		t.Errorf("newest order missing request id or error: %+v", newest)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/audit?result=ok&limit=1")
	var okOrders audit.ListResult
	if err := json.NewDecoder(rec.Body).Decode(&okOrders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if okOrders.Total != 2 || len(okOrders.Orders) != 1 {
		t.Errorf("result=ok: total %d, %d orders; want 2, 1", okOrders.Total, len(okOrders.Orders))
	}
}

func TestAudit_BadQueryAndDisabled(t *testing.T) {
	srv, _ := testServer(t, nil)

	if rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/audit"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled status = %d, want 404", rec.Code)
	}

	srv.audit = audit.NewSQLiteRepository(setupDB(t))
	for _, q := range []string{"limit=x", "offset=-1"} {
		if rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/audit?"+q); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.buildRouter()

	do(t, h, http.MethodPost, "/api/v1/row")

	rec := do(t, h, http.MethodGet, "/api/v1/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `harbour_row_requests_total{result="ok"} 1`) {
		t.Errorf("metrics missing row counter:\n%s", body)
	}
}

func TestMetrics_Disabled(t *testing.T) {
	srv, _ := testServer(t, nil)
	srv.metrics = nil

	rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/metrics")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/lighthouse")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeNotFound)
	}
}

// =============================================================================
// Middleware
// =============================================================================

type panickingRower struct{}

func (panickingRower) Row() error          { panic("oar snapped") }
func (panickingRower) HasRowingBoat() bool { return true }

func TestRecoveryMiddleware(t *testing.T) {
	srv, err := New(Deps{Logger: logging.Discard(), Captain: panickingRower{}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	h := srv.buildRouter()

	// The second order must not deadlock on the row mutex.
	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/v1/row")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("request %d status = %d, want 500", i+1, rec.Code)
		}
	}
}

func TestRequestIDMiddleware_PreservesClientID(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "abc-123")
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestStartClose(t *testing.T) {
	srv, _ := testServer(t, nil)
	ctx := context.Background()

	if err := srv.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := srv.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	if err != nil {
		srv.Close()
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// =============================================================================
// WebSocket
// =============================================================================

// wsFrame is the client's view of a WSMessage.
type wsFrame struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// startSailFeed starts a server whose boat records every sail on the hub.
func startSailFeed(t *testing.T) *Server {
	t.Helper()

	hub := NewHub(config.WebSocketConfig{}, logging.Discard())
	captain := boat.NewCaptain(boat.NewFishingBoatAdapter(boat.FishingBoatOptions{
		Name:     "pequod",
		Recorder: hub,
	}))

	srv, err := New(Deps{
		Config:  testAPIConfig(),
		Logger:  logging.Discard(),
		Captain: captain,
		Hub:     hub,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func connectWebSocket(t *testing.T, addr string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/v1/ws", nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) wsFrame {
	t.Helper()

	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f wsFrame
	if err := ws.ReadJSON(&f); err != nil {
		t.Fatalf("reading websocket frame: %v", err)
	}
	return f
}

func postRow(t *testing.T, addr string) {
	t.Helper()

	resp, err := http.Post("http://"+addr+"/api/v1/row", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /row: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /row status = %d, want 200", resp.StatusCode)
	}
}

func subscribe(t *testing.T, ws *websocket.Conn, msgType string) {
	t.Helper()

	msg := WSMessage{
		Type:    msgType,
		ID:      msgType + "-1",
		Payload: WSSubscribePayload{Channels: []string{ChannelVoyageSail}},
	}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("writing %s message: %v", msgType, err)
	}
	if f := readFrame(t, ws); f.Type != WSTypeResponse || f.ID != msg.ID {
		t.Fatalf("%s reply = %+v, want response with id %s", msgType, f, msg.ID)
	}
}

func TestWebSocket_StreamsSails(t *testing.T) {
	srv := startSailFeed(t)
	ws := connectWebSocket(t, srv.Addr())
	subscribe(t, ws, WSTypeSubscribe)

	postRow(t, srv.Addr())
	postRow(t, srv.Addr())

	for want := uint64(1); want <= 2; want++ {
		f := readFrame(t, ws)
		if f.Type != WSTypeEvent || f.EventType != ChannelVoyageSail {
			t.Fatalf("frame = %+v, want %s event", f, ChannelVoyageSail)
		}
		var event boat.SailEvent
		if err := json.Unmarshal(f.Payload, &event); err != nil {
			t.Fatalf("decoding sail event: %v", err)
		}
		if event.Boat != "pequod" || event.Sequence != want {
			t.Errorf("event = %+v, want pequod #%d", event, want)
		}
	}
}

func TestWebSocket_UnsubscribedClientMissesSails(t *testing.T) {
	srv := startSailFeed(t)
	ws := connectWebSocket(t, srv.Addr())
	subscribe(t, ws, WSTypeSubscribe)
	subscribe(t, ws, WSTypeUnsubscribe)

	postRow(t, srv.Addr())

	// A sail event would be queued ahead of the pong.
	if err := ws.WriteJSON(WSMessage{Type: WSTypePing, ID: "p1"}); err != nil {
		t.Fatalf("writing ping: %v", err)
	}
	if f := readFrame(t, ws); f.Type != WSTypePong || f.ID != "p1" {
		t.Errorf("frame = %+v, want pong p1", f)
	}
}

func TestWebSocket_InvalidMessages(t *testing.T) {
	srv := startSailFeed(t)
	ws := connectWebSocket(t, srv.Addr())

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("writing message: %v", err)
	}
	if f := readFrame(t, ws); f.Type != WSTypeError {
		t.Errorf("frame = %+v, want error for invalid JSON", f)
	}

	if err := ws.WriteJSON(WSMessage{Type: "launch", ID: "x1"}); err != nil {
		t.Fatalf("writing message: %v", err)
	}
	if f := readFrame(t, ws); f.Type != WSTypeError || f.ID != "x1" {
		t.Errorf("frame = %+v, want error for unknown type", f)
	}

	if err := ws.WriteJSON(WSMessage{Type: WSTypeSubscribe, ID: "s0"}); err != nil {
		t.Fatalf("writing message: %v", err)
	}
	if f := readFrame(t, ws); f.Type != WSTypeError || f.ID != "s0" {
		t.Errorf("frame = %+v, want error for subscribe without channels", f)
	}
}

func TestWebSocket_CloseDisconnectsClients(t *testing.T) {
	srv := startSailFeed(t)
	ws := connectWebSocket(t, srv.Addr())
	subscribe(t, ws, WSTypeSubscribe)

	if n := srv.hub.ClientCount(); n != 1 {
		t.Fatalf("ClientCount() = %d, want 1", n)
	}

	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Error("ReadMessage() after Close should fail")
	}
	if n := srv.hub.ClientCount(); n != 0 {
		t.Errorf("ClientCount() after Close = %d, want 0", n)
	}
}

func TestHub_RecordSailWithoutClients(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{}, logging.Discard())

	if err := hub.RecordSail(boat.SailEvent{Boat: "pequod", Sequence: 1}); err != nil {
		t.Errorf("RecordSail() error = %v", err)
	}
	hub.Close()
	hub.Close()
}

func TestCloseBeforeStart(t *testing.T) {
	srv, _ := testServer(t, nil)
	if err := srv.Close(); err != nil {
		t.Errorf("Close() before Start error = %v", err)
	}
}
