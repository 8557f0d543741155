package server

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/minpq"
	"github.com/bastiangx/wordrank/pkg/rank"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// run feeds the encoded messages to a fresh server and returns the raw
// responses after the ready signal.
func run(t *testing.T, cfg *config.Config, msgs ...any) (*Server, []msgpack.RawMessage) {
	t.Helper()
	var in bytes.Buffer
	for _, m := range msgs {
		data, err := msgpack.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		in.Write(data)
	}

	var out bytes.Buffer
	srv := NewServerWithIO(rank.New(minpq.KindHeap), cfg, &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil || ready.Status != "ready" {
		t.Fatalf("ready signal = %+v, %v", ready, err)
	}
	var responses []msgpack.RawMessage
	for {
		raw, err := dec.DecodeRaw()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		responses = append(responses, raw)
	}
	return srv, responses
}

func decode[T any](t *testing.T, raw msgpack.RawMessage) T {
	t.Helper()
	var v T
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decoding %T: %v", v, err)
	}
	return v
}

func TestObserveTopDrain(t *testing.T) {
	srv, resp := run(t, nil,
		Request{ID: "1", Action: "observe", Items: []string{"wcag143", "wcag111", "wcag143", "wcag412", "wcag143", "wcag412"}},
		Request{ID: "2", Action: "top", K: 2},
		Request{ID: "3", Action: "top", Prefix: "wcag1", K: 5},
		Request{ID: "4", Action: "count", Item: "wcag412"},
		Request{ID: "5", Action: "drain", K: 1},
		Request{ID: "6", Action: "top"},
		Request{ID: "7", Action: "stats"},
	)
	if len(resp) != 7 {
		t.Fatalf("got %d responses, want 7", len(resp))
	}

	obs := decode[ObserveResponse](t, resp[0])
	if obs != (ObserveResponse{ID: "1", Status: "ok", Observed: 6, Distinct: 3}) {
		t.Errorf("observe = %+v", obs)
	}

	top := decode[TopResponse](t, resp[1])
	wantTop := []RankedItem{{"wcag143", 3, 1}, {"wcag412", 2, 2}}
	if top.ID != "2" || top.Count != 2 || !reflect.DeepEqual(top.Items, wantTop) {
		t.Errorf("top = %+v", top)
	}

	prefixed := decode[TopResponse](t, resp[2])
	wantPrefixed := []RankedItem{{"wcag143", 3, 1}, {"wcag111", 1, 2}}
	if !reflect.DeepEqual(prefixed.Items, wantPrefixed) {
		t.Errorf("prefixed top = %+v", prefixed.Items)
	}

	if c := decode[CountResponse](t, resp[3]); c.Count != 2 || c.Item != "wcag412" {
		t.Errorf("count = %+v", c)
	}

	drained := decode[TopResponse](t, resp[4])
	if !reflect.DeepEqual(drained.Items, []RankedItem{{"wcag143", 3, 1}}) {
		t.Errorf("drain = %+v", drained.Items)
	}

	// Default k is rank.top_k (3); only two items remain after the drain.
	rest := decode[TopResponse](t, resp[5])
	wantRest := []RankedItem{{"wcag412", 2, 1}, {"wcag111", 1, 2}}
	if !reflect.DeepEqual(rest.Items, wantRest) {
		t.Errorf("top after drain = %+v", rest.Items)
	}

	stats := decode[StatsResponse](t, resp[6])
	want := Stats{Distinct: 2, Observations: 6, Backend: "heap", Requests: 7}
	if stats.ID != "7" || stats.Stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if srv.Stats() != want {
		t.Errorf("Stats() = %+v", srv.Stats())
	}
}

func TestErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxBatch = 2
	cfg.Server.MaxPrefix = 4

	tests := []struct {
		name string
		msg  any
		code int
		text string
	}{
		{"unknown action", Request{ID: "a", Action: "frobnicate"}, 400, "Unknown action: frobnicate"},
		{"missing action", Request{ID: "b"}, 400, "Missing 'action'"},
		{"empty batch", Request{ID: "c", Action: "observe"}, 400, "Missing 'items'"},
		{"batch too large", Request{ID: "d", Action: "observe", Items: []string{"a", "b", "c"}}, 400, "exceeds maximum of 2"},
		{"empty item", Request{ID: "e", Action: "observe", Items: []string{"a", ""}}, 400, "position 1"},
		{"negative k", Request{ID: "f", Action: "top", K: -1}, 400, "Invalid k"},
		{"long prefix", Request{ID: "g", Action: "top", Prefix: "wcag14"}, 400, "Prefix exceeds"},
		{"drain with prefix", Request{ID: "h", Action: "drain", Prefix: "w"}, 400, "prefix"},
		{"count without item", Request{ID: "i", Action: "count"}, 400, "Missing 'item'"},
		{"not a map", 42, 400, "Invalid msgpack request"},
		{"wrong field type", map[string]any{"id": "j", "action": "top", "k": "lots"}, 400, "Invalid msgpack request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp := run(t, cfg, tt.msg, Request{ID: "ok", Action: "health"})
			if len(resp) != 2 {
				t.Fatalf("got %d responses, want 2", len(resp))
			}
			e := decode[ErrorResponse](t, resp[0])
			if e.Code != tt.code || !strings.Contains(e.Error, tt.text) {
				t.Errorf("error = %+v, want code %d containing %q", e, tt.code, tt.text)
			}
			// The server keeps serving after a bad request.
			if h := decode[StatusResponse](t, resp[1]); h.Status != "ok" || h.ID != "ok" {
				t.Errorf("health after error = %+v", h)
			}
		})
	}
}

func TestBadBatchRecordsNothing(t *testing.T) {
	srv, _ := run(t, nil,
		Request{ID: "1", Action: "observe", Items: []string{"a", "b", ""}},
	)
	if st := srv.Stats(); st.Distinct != 0 || st.Observations != 0 {
		t.Errorf("partial batch recorded: %+v", st)
	}
}

func TestKClampedToMaxK(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rank.MaxK = 2
	items := []string{"a", "a", "a", "b", "b", "c", "d"}
	_, resp := run(t, cfg,
		Request{ID: "1", Action: "observe", Items: items},
		Request{ID: "2", Action: "top", K: 100},
	)
	top := decode[TopResponse](t, resp[1])
	if top.Count != 2 || top.Items[0].Word != "a" || top.Items[1].Word != "b" {
		t.Errorf("clamped top = %+v", top)
	}
}

func TestReset(t *testing.T) {
	srv, resp := run(t, nil,
		Request{ID: "1", Action: "observe", Items: []string{"a", "b"}},
		Request{ID: "2", Action: "reset"},
		Request{ID: "3", Action: "top"},
	)
	if st := decode[StatusResponse](t, resp[1]); st.Status != "ok" {
		t.Errorf("reset = %+v", st)
	}
	if top := decode[TopResponse](t, resp[2]); top.Count != 0 || len(top.Items) != 0 {
		t.Errorf("top after reset = %+v", top)
	}
	if srv.Stats().Observations != 0 {
		t.Errorf("observations survived reset")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStartReturnsWriteErrors(t *testing.T) {
	srv := NewServerWithIO(rank.New(minpq.KindHeap), nil, strings.NewReader(""), failingWriter{})
	if err := srv.Start(); err == nil {
		t.Error("expected write error")
	}
}
