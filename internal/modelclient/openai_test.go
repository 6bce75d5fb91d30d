// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package modelclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/truthx/internal/config"
)

// chatServer answers /chat/completions with content as the assistant message.
func chatServer(t *testing.T, content string, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&lastReq)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream overloaded","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &lastReq
}

func TestOpenAITextModel_Verdict(t *testing.T) {
	srv, lastReq := chatServer(t, `{"label":"ai-generated","confidence":0.83,"reasons":["uniform sentence length",""]}`, http.StatusOK)

	m, err := NewOpenAITextModel("test-openai-ok", config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	p, err := m.PredictText(context.Background(), "Some essay text.")
	if err != nil {
		t.Fatalf("PredictText: %v", err)
	}
	if p.Label != "ai-generated" || p.Confidence != 0.83 || p.Model != defaultChatModel {
		t.Errorf("prediction = %+v", p)
	}
	if len(p.Findings) != 1 || p.Findings[0].Label != "uniform sentence length" {
		t.Errorf("Findings = %+v", p.Findings)
	}

	req := *lastReq
	if req["model"] != defaultChatModel {
		t.Errorf("request model = %v", req["model"])
	}
	if _, ok := req["max_tokens"]; !ok {
		t.Error("expected max_tokens for a non-reasoning model")
	}
	rf, _ := req["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", req["response_format"])
	}
}

func TestOpenAITextModel_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  int
		wantErr error
	}{
		{"not json", "I think it is human.", http.StatusOK, ErrMalformedResponse},
		{"bad confidence", `{"label":"human-written","confidence":7}`, http.StatusOK, ErrMalformedResponse},
		{"server error", "", http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := chatServer(t, tt.content, tt.status)
			m, err := NewOpenAITextModel("test-openai-"+tt.name, config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := m.PredictText(context.Background(), "text"); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(config.OpenAIConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestIsReasoningModel(t *testing.T) {
	for model, want := range map[string]bool{
		"gpt-4o-mini": false,
		"o3-mini":     true,
		"gpt-5-nano":  true,
		"llama3":      false,
	} {
		if got := isReasoningModel(model); got != want {
			t.Errorf("isReasoningModel(%q) = %v, want %v", model, got, want)
		}
	}
}
