package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taleteller/internal/config"
)

func TestStabilityGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2beta/stable-image/generate/core", r.URL.Path)
		assert.Equal(t, "Bearer sk-stab", r.Header.Get("Authorization"))
		assert.Equal(t, "image/*", r.Header.Get("Accept"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "a haunted lighthouse", r.FormValue("prompt"))
		assert.Equal(t, "png", r.FormValue("output_format"))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	g := NewStability(config.StabilityConfig{APIKey: "sk-stab", BaseURL: srv.URL + "/"})
	data, err := g.Generate(context.Background(), "a haunted lighthouse")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), data)
}

func TestStabilityErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"errors":["insufficient credits"]}`)
	}))
	defer srv.Close()

	g := NewStability(config.StabilityConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), "x")
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusPaymentRequired, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "insufficient credits")
}

func TestStabilityEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewStability(config.StabilityConfig{BaseURL: srv.URL}).Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "b64_json", body["response_format"])
		assert.Equal(t, "a castle", body["prompt"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString([]byte("IMG"))}},
		})
	}))
	defer srv.Close()

	g := NewOpenAI(config.OpenAIImage{APIKey: "sk", BaseURL: srv.URL})
	data, err := g.Generate(context.Background(), "a castle")
	require.NoError(t, err)
	assert.Equal(t, []byte("IMG"), data)
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(&config.ImageConfig{Provider: "Stability"})
	require.NoError(t, err)
	assert.Equal(t, "stability", g.Name())

	g, err = NewGenerator(&config.ImageConfig{Provider: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Name())

	_, err = NewGenerator(&config.ImageConfig{Provider: "midjourney"})
	assert.Error(t, err)
}
