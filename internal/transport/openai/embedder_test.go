package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/reelrank/reelrank/internal/domain"
	"github.com/reelrank/reelrank/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// embeddingAPIResponse mirrors the OpenAI-compatible embedding response.
type embeddingAPIResponse struct {
	Object string             `json:"object"`
	Data   []embeddingAPIItem `json:"data"`
	Model  string             `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingAPIItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func serveEmbeddings(t *testing.T, resp embeddingAPIResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedder_Embed(t *testing.T) {
	resp := embeddingAPIResponse{Object: "list", Model: "test-model"}
	resp.Data = []embeddingAPIItem{
		{Object: "embedding", Embedding: []float32{0.1, 0.2, 0.3, 0.4}, Index: 0},
	}
	resp.Usage.PromptTokens = 10
	resp.Usage.TotalTokens = 10

	server := serveEmbeddings(t, resp)
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 4,
		Logger:     zap.NewNop(),
	})

	vec, err := emb.Embed(context.Background(), "a space western about a salvage crew")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 4 {
		t.Fatalf("expected 4 dimensions, got %d", len(vec))
	}
	want := []float64{0.1, 0.2, 0.3, 0.4}
	for i := range vec {
		if diff := vec[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("vec[%d] = %f, expected %f", i, vec[i], want[i])
		}
	}
}

func TestEmbedder_BatchEmbedRestoresOrder(t *testing.T) {
	// Vectors arrive out of order; BatchEmbed must sort by Index.
	resp := embeddingAPIResponse{Object: "list", Model: "test-model"}
	resp.Data = []embeddingAPIItem{
		{Object: "embedding", Embedding: []float32{0.3, 0.4}, Index: 1},
		{Object: "embedding", Embedding: []float32{0.1, 0.2}, Index: 0},
	}
	resp.Usage.TotalTokens = 20

	server := serveEmbeddings(t, resp)
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	vectors, err := emb.BatchEmbed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] > 0.15 {
		t.Errorf("first vector = %v, order was not restored", vectors[0])
	}
	if vectors[1][0] < 0.25 {
		t.Errorf("second vector = %v, order was not restored", vectors[1])
	}
}

func TestEmbedder_BatchEmbed_Empty(t *testing.T) {
	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: "http://unused",
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	vectors, err := emb.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil for empty input, got %v", vectors)
	}
}

func TestEmbedder_BatchEmbed_CountMismatch(t *testing.T) {
	resp := embeddingAPIResponse{Object: "list", Model: "test-model"}
	resp.Data = []embeddingAPIItem{
		{Object: "embedding", Embedding: []float32{0.1}, Index: 0},
	}

	server := serveEmbeddings(t, resp)
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider for count mismatch, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider for 429 response, got %v", err)
	}
}
