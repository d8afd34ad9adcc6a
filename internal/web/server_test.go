package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/servo-bridge/internal/logic"
	"github.com/sweeney/servo-bridge/internal/protocol"
	"github.com/sweeney/servo-bridge/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Port:        "/dev/ttyACM0",
		Baud:        9600,
		PollMs:      10,
		HeartbeatMs: 1000,
		ReportMs:    900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func recordFrame(tr *status.Tracker) {
	tr.RecordFrame("S10,20,30,40,50,60,1,0,1E", protocol.Result{
		Frame: protocol.Frame{10, 20, 30, 40, 50, 60, 1, 0, 1},
		Snapshot: protocol.Snapshot{
			Angles:  [protocol.ServoCount]int{10, 20, 30, 40, 50, 60},
			Outputs: [protocol.OutputCount]bool{true, false, true},
			Inputs:  [protocol.InputCount]bool{false, false, true},
		},
	}, time.Now())
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	recordFrame(tr)
	tr.UpdateInputs([]logic.State{logic.StateOff, logic.StateOff, logic.StateOn}, true, logic.EventCounts{{}, {}, {On: 1}})
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Bank == nil || sj.Status.Bank.Servos[5] != 60 {
		t.Errorf("Bank: got %+v", sj.Status.Bank)
	}
	if sj.Status.Frames.OK != 1 {
		t.Errorf("Frames.OK: got %d, want 1", sj.Status.Frames.OK)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Config.Baud != 9600 {
		t.Errorf("Config.Baud: got %d, want 9600", sj.Status.Config.Baud)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	recordFrame(tr)

	resp, body := get(t, ts.URL+"/")

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	for _, want := range []string{"Servo Bridge", "Servo 5", "60&deg;", "width: 33%", "S10,20,30,40,50,60,1,0,1E", "/dev/ttyACM0 @ 9600"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLWithoutState(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/index.html")

	if !strings.Contains(body, "no state yet") {
		t.Error("expected placeholder before the first frame")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/nope")

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	_, body := get(t, ts.URL+"/index.json")
	if strings.Contains(body, `"bank"`) {
		t.Fatal("bank should be absent before the first frame")
	}

	recordFrame(tr)
	tr.SetIndicator(true)

	_, body = get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Bank == nil {
		t.Error("bank should be present after a frame")
	}
	if !sj.Status.Indicator {
		t.Error("expected Indicator=true")
	}
}

func TestStateEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)

	resp, _ := get(t, ts.URL+"/state")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before first frame: got %d, want 503", resp.StatusCode)
	}

	recordFrame(tr)
	resp, body := get(t, ts.URL+"/state")
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if body != "S10,20,30,40,50,60,1,0,1,0,0,1E\n" {
		t.Errorf("body: got %q", body)
	}
}

func TestPostRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET, HEAD" {
		t.Errorf("Allow: got %q", allow)
	}
}

// brokenWriter is a client that went away mid-response.
type brokenWriter struct {
	*httptest.ResponseRecorder
	writes int
}

func (b *brokenWriter) Write([]byte) (int, error) {
	b.writes++
	return 0, errors.New("connection reset by peer")
}

func (b *brokenWriter) WriteString(s string) (int, error) { return b.Write([]byte(s)) }

func TestWriteErrorsDoNotBreakHandlers(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{})
	recordFrame(tr)
	h := New(":0", tr).Handler()

	for _, path := range []string{"/index.json", "/state"} {
		w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.writes != 1 {
			t.Errorf("%s: expected 1 write attempt, got %d", path, w.writes)
		}
		if ct := w.Header().Get("Content-Type"); ct == "" {
			t.Errorf("%s: content type not set", path)
		}
	}
}
