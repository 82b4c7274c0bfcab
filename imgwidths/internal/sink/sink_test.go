package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/hazyhaar/rwd/dbopen"
	"github.com/hazyhaar/rwd/imgwidths/internal/store"
	"github.com/hazyhaar/rwd/imgwidths/measure"
	"github.com/hazyhaar/rwd/kit"
)

func testReport() measure.Report {
	return measure.Report{
		RunID:    "run_test",
		URL:      "https://example.com",
		Selector: "img",
		Widths: measure.Widths{
			Range: measure.Range{Min: 100, Max: 102},
			Samples: []measure.Sample{
				{Viewport: 100, Width: 100},
				{Viewport: 101, Width: 101},
				{Viewport: 102, Width: 102},
			},
		},
		Demand: measure.Demand{
			Entries: []measure.DemandEntry{
				{Width: 100, Views: 5, Share: 0.5},
				{Width: 200, Views: 3, Share: 0.3},
				{Width: 400, Views: 2, Share: 0.2},
			},
			TotalViews: 10,
		},
		Plan: measure.Plan{Widths: []int{200, 400}, Requested: 2, Waste: 50},
	}
}

type failSink struct{ name string }

func (f failSink) Name() string                               { return f.name }
func (f failSink) Send(context.Context, measure.Report) error { return errors.New("disk full") }
func (f failSink) Close() error                               { return nil }

func TestRouter_FanOutSurvivesFailure(t *testing.T) {
	var got []string
	cb := NewCallback(func(_ context.Context, r measure.Report) error {
		got = append(got, r.RunID)
		return nil
	})
	r := NewRouter(nil, failSink{"broken"}, cb)

	err := r.Send(context.Background(), testReport())
	if err == nil {
		t.Fatal("want error from failing sink")
	}
	var we *measure.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("want *WriteError, got %T", err)
	}
	if we.Sink != "broken" {
		t.Errorf("sink name: got %q", we.Sink)
	}
	if len(got) != 1 || got[0] != "run_test" {
		t.Errorf("callback after failure: got %v", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len: got %d, want 2", r.Len())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestRouter_NoSinks(t *testing.T) {
	if err := NewRouter(nil).Send(context.Background(), testReport()); err != nil {
		t.Fatalf("empty router: %v", err)
	}
}

func TestStdout(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	if err := s.Send(context.Background(), testReport()); err != nil {
		t.Fatal(err)
	}

	var env struct {
		Type string         `json:"type"`
		Data measure.Report `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "report" || env.Data.RunID != "run_test" {
		t.Errorf("got %+v", env)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("want newline-terminated JSON line")
	}
}

func TestCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := CSVConfig{
		VariationsFile: filepath.Join(dir, "variations.csv"),
		DestFile:       filepath.Join(dir, "out", "dest.csv"),
		SrcsetFile:     filepath.Join(dir, "srcset.txt"),
		SrcsetPattern:  "hero-{width}.jpg",
	}
	if err := NewCSV(cfg).Send(context.Background(), testReport()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(cfg.VariationsFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var samples []measure.Sample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 || samples[2] != (measure.Sample{Viewport: 102, Width: 102}) {
		t.Errorf("variations: got %+v", samples)
	}

	dest, err := os.ReadFile(cfg.DestFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(dest)), "\n")
	if lines[0] != "width,share,views" {
		t.Errorf("dest header: got %q", lines[0])
	}
	if lines[1] != "100,0.5,5" {
		t.Errorf("dest first row: got %q", lines[1])
	}

	srcset, err := os.ReadFile(cfg.SrcsetFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(srcset); got != "hero-200.jpg 200w, hero-400.jpg 400w\n" {
		t.Errorf("srcset: got %q", got)
	}
}

func TestCSV_SkipsEmptyPaths(t *testing.T) {
	if err := NewCSV(CSVConfig{}).Send(context.Background(), testReport()); err != nil {
		t.Fatalf("no paths: %v", err)
	}
}

func TestChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demand.png")
	if err := NewChart(path).Send(context.Background(), testReport()); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("empty chart file")
	}

	empty := testReport()
	empty.Demand = measure.Demand{}
	if err := NewChart(path).Send(context.Background(), empty); err == nil {
		t.Error("empty demand: want error")
	}
}

func TestStoreSink(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	st := &store.Store{DB: db}

	if err := NewStore(st).Send(context.Background(), testReport()); err != nil {
		t.Fatal(err)
	}
	got, err := st.GetRun(context.Background(), "run_test")
	if err != nil || got == nil {
		t.Fatalf("GetRun: %v, %v", got, err)
	}
	if len(got.Plan.Widths) != 2 || got.Plan.Widths[0] != 200 {
		t.Errorf("plan: got %v", got.Plan.Widths)
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := wh.Send(context.Background(), testReport()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls: got %d, want 3", n)
	}
	if !bytes.Contains(body, []byte(`"run_id":"run_test"`)) {
		t.Errorf("body: %s", body)
	}
}

func TestWebhook_RunIDHeader(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Run-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	if err := wh.Send(kit.WithRunID(context.Background(), "run_ctx"), testReport()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if h, _ := got.Load().(string); h != "run_ctx" {
		t.Errorf("X-Run-ID: got %q, want run_ctx", h)
	}
}

func TestWebhook_ClientErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := wh.Send(context.Background(), testReport()); err == nil {
		t.Fatal("want error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls: got %d, want 1", n)
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(2), WithWebhookBackoff(time.Millisecond))
	err := wh.Send(context.Background(), testReport())
	if err == nil || !strings.Contains(err.Error(), "exhausted 2 retries") {
		t.Fatalf("got %v", err)
	}
}
