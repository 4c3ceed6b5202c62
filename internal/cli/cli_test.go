package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"loracom/internal/externalio/server"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestEncodeDescribeFrame(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		from     int
		to       int
		wantErr  bool
		wantDesc []string
	}{
		{
			name:     "Float command",
			line:     "12 3.1",
			from:     1,
			to:       2,
			wantDesc: []string{"type:", "from:1 to:2", "command 12 3.1"},
		},
		{
			name:     "Text command to broadcast",
			line:     "2 output 1 on",
			from:     4,
			to:       255,
			wantDesc: []string{"from:4 to:255", "command 2 output 1 on"},
		},
		{name: "Missing parameter", line: "12", from: 1, to: 2, wantErr: true},
		{name: "Sender out of range", line: "1 0", from: 256, to: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encodeCommand(tt.line, tt.from, tt.to)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got frame %q", encoded)
				}
				return
			}
			if err != nil {
				t.Fatalf("encodeCommand: %v", err)
			}

			desc, err := describeFrame(encoded)
			if err != nil {
				t.Fatalf("describeFrame: %v", err)
			}
			for _, want := range tt.wantDesc {
				if !strings.Contains(desc, want) {
					t.Errorf("description %q missing %q", desc, want)
				}
			}
		})
	}
}

func TestDescribeFrame_Invalid(t *testing.T) {
	for _, input := range []string{"zz", "00"} {
		if _, err := describeFrame(input); err == nil {
			t.Errorf("describeFrame(%q) expected error", input)
		}
	}
}

// Minimal stand-in for the node API
func fakeNodeAPI(t *testing.T, outcomes []string) (srv *httptest.Server, lastTarget *atomic.Value) {
	t.Helper()
	lastTarget = &atomic.Value{}
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/command", func(w http.ResponseWriter, r *http.Request) {
		lastTarget.Store(r.URL.RawQuery)
		body, _ := io.ReadAll(r.Body)
		line := strings.TrimSpace(string(body))
		if line == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(server.Jerror{Msg: "invalid command id"})
			return
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(server.JSubmitted{Sequence: 7, Receiver: 2, Command: line})
	})
	mux.HandleFunc("/outcome/", func(w http.ResponseWriter, r *http.Request) {
		i := int(polls.Add(1)) - 1
		if i >= len(outcomes) {
			i = len(outcomes) - 1
		}
		json.NewEncoder(w).Encode(server.JOutcome{Sequence: 7, Outcome: outcomes[i]})
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return
}

func TestSubmitCommand(t *testing.T) {
	srv, lastTarget := fakeNodeAPI(t, []string{"acked"})

	submitted, err := submitCommand(context.Background(), srv.Client(), srv.URL, "12 3.1", 2)
	if err != nil {
		t.Fatalf("submitCommand: %v", err)
	}
	if submitted.Sequence != 7 || submitted.Command != "12 3.1" {
		t.Errorf("unexpected response %+v", submitted)
	}
	if got := lastTarget.Load(); got != "to=2" {
		t.Errorf("query = %v, want to=2", got)
	}

	_, err = submitCommand(context.Background(), srv.Client(), srv.URL, "1 0", -1)
	if err != nil {
		t.Fatalf("submitCommand without receiver: %v", err)
	}
	if got := lastTarget.Load(); got != "" {
		t.Errorf("query = %v, want none", got)
	}

	_, err = submitCommand(context.Background(), srv.Client(), srv.URL, "bad", 2)
	if err == nil || !strings.Contains(err.Error(), "invalid command id") {
		t.Errorf("expected node error message, got %v", err)
	}
}

func TestWaitOutcome(t *testing.T) {
	srv, _ := fakeNodeAPI(t, []string{"queued", "queued", "failed"})

	outcome, err := waitOutcome(context.Background(), srv.Client(), srv.URL, 7)
	if err != nil {
		t.Fatalf("waitOutcome: %v", err)
	}
	if outcome != "failed" {
		t.Errorf("outcome = %q, want failed", outcome)
	}
}

func TestWaitOutcome_Timeout(t *testing.T) {
	srv, _ := fakeNodeAPI(t, []string{"queued"})

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err := waitOutcome(ctx, srv.Client(), srv.URL, 7)
	if err == nil {
		t.Errorf("expected error while the command stays queued")
	}
}

func TestWriteHelpMenu(t *testing.T) {
	root := DefineOptions()

	sendFlags := flag.NewFlagSet("send", flag.ContinueOnError)
	var wait bool
	var receiver int
	var timeout time.Duration
	sendFlags.IntVar(&receiver, "t", -1, "Receiving device id")
	sendFlags.IntVar(&receiver, "to", -1, "Receiving device id")
	sendFlags.BoolVar(&wait, "w", false, "Wait for the outcome")
	sendFlags.BoolVar(&wait, "wait", false, "Wait for the outcome")
	sendFlags.DurationVar(&timeout, "timeout", 20*time.Second, "Maximum time to wait")

	tests := []struct {
		name       string
		command    string
		flags      *flag.FlagSet
		contains   []string
		notContain []string
	}{
		{
			name:    "root lists commands",
			command: RootCLICommand,
			flags:   flag.NewFlagSet("loracom", flag.ContinueOnError),
			contains: []string{
				"Usage: loracom <command> [options]",
				"Commands:", "run", "send", "parse", "configure", "version",
				"Run 'loracom <command> -h'",
			},
			notContain: []string{"evsec", "github.com", "Examples:"},
		},
		{
			name:    "send merges short and long flags",
			command: "send",
			flags:   sendFlags,
			contains: []string{
				"Usage: loracom send [options] \"<command id> <parameter>\"",
				"-t, --to",
				"-w, --wait",
				"    --timeout",
				"[default: 20s]",
				"[default: -1]",
				"Examples:",
				"loracom send -t 2 -w",
			},
			notContain: []string{"Commands:", "Run 'loracom"},
		},
		{
			name:     "parse shows hex example",
			command:  "parse",
			flags:    flag.NewFlagSet("parse", flag.ContinueOnError),
			contains: []string{"loracom parse -x <hex frame>"},
		},
		{
			name:     "unknown command",
			command:  "transmit",
			flags:    flag.NewFlagSet("transmit", flag.ContinueOnError),
			contains: []string{"Unknown command: transmit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			writeHelpMenu(&out, "loracom", tt.flags, tt.command, root)
			menu := out.String()

			for _, want := range tt.contains {
				if !strings.Contains(menu, want) {
					t.Errorf("expected %q in menu:\n%s", want, menu)
				}
			}
			for _, unwanted := range tt.notContain {
				if strings.Contains(menu, unwanted) {
					t.Errorf("unexpected %q in menu:\n%s", unwanted, menu)
				}
			}
		})
	}
}

func TestCollectOptions_Order(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var text string
	fs.StringVar(&text, "x", "", "Hex frame")
	fs.StringVar(&text, "hex", "", "Hex frame")
	fs.StringVar(&text, "from", "1", "Sender")
	fs.StringVar(&text, "a", "", "Address")

	opts := collectOptions(fs)
	var got []string
	for _, opt := range opts {
		got = append(got, strings.TrimSpace(opt.names()))
	}
	want := []string{"-a", "--from", "-x, --hex"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected options %v, got %v", want, got)
	}
}
