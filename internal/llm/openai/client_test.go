package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bom-validator/internal/llm"
)

func TestReadTable(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  [{\"description\":\"STRAINER\"}] "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"}, nil)
	assert.Equal(t, "openai", c.Name())

	text, err := c.ReadTable(context.Background(), llm.TableRequest{Image: []byte{0x89, 'P'}, Prompt: "read it"})
	require.NoError(t, err)
	assert.Equal(t, `[{"description":"STRAINER"}]`, text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	msgs := got["messages"].([]any)
	content := msgs[0].(map[string]any)["content"].([]any)
	img := content[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(img, "data:image/png;base64,"))
}

func TestReadTableErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer empty":
			_, _ = w.Write([]byte(`{"choices":[]}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	_, err := NewClient(Config{APIKey: "bad", BaseURL: srv.URL}, nil).ReadTable(context.Background(), llm.TableRequest{})
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "empty", BaseURL: srv.URL}, nil).ReadTable(context.Background(), llm.TableRequest{})
	assert.ErrorContains(t, err, "no choices")
}
