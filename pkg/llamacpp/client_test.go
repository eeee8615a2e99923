package llamacpp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListObjects(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"objects\":[{\"label\":\"cat\",\"confidence\":0.8,\"box\":{\"x\":0.1,\"y\":0.1,\"w\":0.5,\"h\":0.5}}],\"description\":\"a cat\"}"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	result, err := c.ListObjects(context.Background(), "test-model", "list objects", "aGVsbG8=")
	if err != nil {
		t.Fatalf("ListObjects failed: %v", err)
	}

	if len(result.Objects) != 1 || result.Objects[0].Label != "cat" {
		t.Errorf("Unexpected objects: %+v", result.Objects)
	}
	if got.Model != "test-model" || got.Stream {
		t.Errorf("Unexpected request: %+v", got)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("Expected one message, got %d", len(got.Messages))
	}
	parts, ok := got.Messages[0].Content.([]interface{})
	if !ok || len(parts) != 2 {
		t.Errorf("Expected text and image parts, got %#v", got.Messages[0].Content)
	}
}

func TestListObjectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.ListObjects(context.Background(), "m", "p", ""); err == nil {
		t.Error("Expected error for 503 response")
	}
}

func TestSimpleQueryEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.SimpleQuery(context.Background(), "m", "p", ""); err == nil {
		t.Error("Expected error for empty choices")
	}
}
