// internal/classify/classifier_test.go
package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"cinescrape/internal/config"
)

func fakeOllama(t *testing.T, modelOutput string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("unexpected model %v", req["model"])
		}
		prompt, _ := req["prompt"].(string)
		if !strings.Contains(prompt, "Direction: Filmmaking skill, vision") {
			t.Error("prompt missing strength vocabulary")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": modelOutput})
	}))
}

func classifierConfig(endpoint string) *config.ClassifyConfig {
	return &config.ClassifyConfig{
		Enabled:  true,
		Endpoint: endpoint,
		Model:    "test-model",
		Retry: config.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   config.Duration(1_000_000),
			Multiplier:  2.0,
		},
	}
}

func TestClassifyFiltersUnknownCategories(t *testing.T) {
	out, _ := json.Marshal(map[string]interface{}{
		"strengths":  []string{"Direction", "Invented Category"},
		"weaknesses": []string{"Plot Issues"},
	})
	server := fakeOllama(t, string(out))
	defer server.Close()

	c, err := NewClassifier(classifierConfig(server.URL), NewRegistry())
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	analysis, err := c.Classify(context.Background(), "Great film", "Masterful directing, weak plot.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !reflect.DeepEqual(analysis.Strengths, []string{"Direction"}) {
		t.Errorf("expected unknown strength filtered, got %v", analysis.Strengths)
	}
	if !reflect.DeepEqual(analysis.Weaknesses, []string{"Plot Issues"}) {
		t.Errorf("unexpected weaknesses: %v", analysis.Weaknesses)
	}
}

func TestClassifyPromotesSuggestedCategory(t *testing.T) {
	out, _ := json.Marshal(map[string]interface{}{
		"strengths":  []string{"Sound Mixing"},
		"weaknesses": []string{},
		"suggested_categories": []map[string]string{
			{"title": "Sound Mixing", "description": "Audio balance quality"},
		},
	})
	server := fakeOllama(t, string(out))
	defer server.Close()

	c, err := NewClassifier(classifierConfig(server.URL), NewRegistry())
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	analysis, err := c.Classify(context.Background(), "Loud film", "The mix is superb.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !reflect.DeepEqual(analysis.Strengths, []string{"Sound Mixing"}) {
		t.Errorf("suggested category must survive after promotion, got %v", analysis.Strengths)
	}
	if !reflect.DeepEqual(analysis.SuggestedCategories, []string{"Sound Mixing"}) {
		t.Errorf("unexpected suggested list: %v", analysis.SuggestedCategories)
	}
}

func TestClassifySkipsEmptyContent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c, err := NewClassifier(classifierConfig(server.URL), NewRegistry())
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	for _, content := range []string{"", "   ", "N/A", "n/a"} {
		analysis, err := c.Classify(context.Background(), "Empty", content)
		if err != nil {
			t.Fatalf("Classify(%q) failed: %v", content, err)
		}
		if len(analysis.Strengths) != 0 || len(analysis.Weaknesses) != 0 {
			t.Errorf("expected empty analysis for %q", content)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("empty reviews must not reach the endpoint")
	}
}

func TestClassifyRetriesServerErrors(t *testing.T) {
	var calls int32
	out, _ := json.Marshal(map[string]interface{}{"strengths": []string{}, "weaknesses": []string{}})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": string(out)})
	}))
	defer server.Close()

	c, err := NewClassifier(classifierConfig(server.URL), NewRegistry())
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	if _, err := c.Classify(context.Background(), "Flaky", "some content"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestNewClassifierValidation(t *testing.T) {
	if _, err := NewClassifier(nil, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewClassifier(&config.ClassifyConfig{Endpoint: "http://x"}, nil); err == nil {
		t.Error("expected error for missing model")
	}
}
