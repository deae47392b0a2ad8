package judge0

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := Config{BaseURL: server.URL + "/", AuthToken: "secret"}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults failed: %v", err)
	}
	return NewClient(cfg)
}

func TestClientSubmitBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submissions/batch" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("base64_encoded") != "false" {
			t.Errorf("expected base64_encoded=false")
		}
		if r.Header.Get("X-Auth-Token") != "secret" {
			t.Errorf("missing auth header")
		}
		var body batchSubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body failed: %v", err)
		}
		if len(body.Submissions) != 2 || body.Submissions[1].Stdin != "b" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"token":"t1"},{"token":"t2"}]`))
	})

	tokens, err := client.SubmitBatch(context.Background(), []ExecutionRequest{
		{SourceCode: "x", LanguageID: 71, Stdin: "a", ExpectedOutput: "1"},
		{SourceCode: "x", LanguageID: 71, Stdin: "b", ExpectedOutput: "2"},
	})
	if err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "t1" || tokens[1] != "t2" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
}

func TestClientSubmitBatchRejectedItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"token":"t1"},{"language_id":["is not included in the list"]}]`))
	})

	_, err := client.SubmitBatch(context.Background(), []ExecutionRequest{{}, {}})
	if err == nil {
		t.Fatalf("expected error for rejected submission")
	}
}

func TestClientGetBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("tokens") != "t1,t2" {
			t.Errorf("unexpected tokens: %s", query.Get("tokens"))
		}
		if query.Get("fields") != resultFields {
			t.Errorf("unexpected fields: %s", query.Get("fields"))
		}
		_, _ = w.Write([]byte(`{"submissions":[{"token":"t1","status_id":3,"stdout":"1\n"},null,{"token":"t2","status_id":2}]}`))
	})

	results, err := client.GetBatch(context.Background(), []SubmissionToken{"t1", "t2"})
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if len(results) != 2 || results[0].StatusID != 3 || results[0].Stdout != "1\n" || results[1].Token != "t2" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestClientNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	})

	_, err := client.GetBatch(context.Background(), []SubmissionToken{"t1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "503") || len(err.Error()) > 600 {
		t.Fatalf("unexpected error: %d bytes", len(err.Error()))
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "empty", baseURL: "  ", wantErr: true},
		{name: "no scheme", baseURL: "judge0:2358", wantErr: true},
		{name: "valid", baseURL: " http://judge0:2358/ "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{BaseURL: tc.baseURL}
			err := cfg.ApplyDefaults()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyDefaults failed: %v", err)
			}
			if cfg.BaseURL != "http://judge0:2358" {
				t.Fatalf("unexpected base url: %s", cfg.BaseURL)
			}
			if cfg.Poll != DefaultPollPolicy() || cfg.Timeout != defaultRequestTimeout {
				t.Fatalf("defaults not applied: %+v", cfg)
			}
		})
	}
}
