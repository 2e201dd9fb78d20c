package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/snapgraph/internal/executor"
	reqid "github.com/hanpama/snapgraph/internal/reqid"
	schema "github.com/hanpama/snapgraph/internal/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s := schema.NewSchema("").WithBuiltins().
		SetQueryType("Query").
		SetSubscriptionType("Subscription")
	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(schema.NewField("hello", "", schema.NamedType("String"))))
	s.AddType(schema.NewType("Subscription", schema.TypeKindObject, "").
		AddField(schema.NewField("tick", "", schema.NonNullType(schema.NamedType("String")))))
	require.NoError(t, s.Validate())
	return s
}

func newTestHandler(t *testing.T, rt executor.Runtime, opts ...Option) *Handler {
	t.Helper()
	h, err := New(rt, testSchema(t), opts...)
	require.NoError(t, err)
	return h
}

func helloRuntime() *executor.MockRuntime {
	return &executor.MockRuntime{
		ResolveFieldFn: func(_ context.Context, _, field string, source any, _ map[string]any) (any, error) {
			if field == "tick" {
				return source, nil
			}
			return "world", nil
		},
	}
}

func postQuery(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t, helloRuntime())
	w := postQuery(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "world", res.Data["hello"])
}

func TestGetQuery(t *testing.T) {
	h := newTestHandler(t, helloRuntime())
	req := httptest.NewRequest("GET", "/?query={hello}", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"world"`)
}

func TestBatchedQueries(t *testing.T) {
	h := newTestHandler(t, helloRuntime())
	w := postQuery(t, h, `[{"query":"{ hello }"},{"query":"{ hello }"}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var res []struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 2)
	assert.Equal(t, "world", res[1].Data["hello"])
}

func TestSubscriptionOverPostIsRefused(t *testing.T) {
	h := newTestHandler(t, helloRuntime())
	w := postQuery(t, h, `{"query":"subscription { tick }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "WebSocket")
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, helloRuntime(), WithCORS("*"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	assert.Equal(t, http.StatusNoContent, pw.Code)
	assert.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, helloRuntime(), WithMaxBodyBytes(10))
	w := postQuery(t, h, `{"query":"{ hello hello2 }"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID(t *testing.T) {
	var capturedID reqid.ID
	rt := &executor.MockRuntime{
		ResolveFieldFn: func(ctx context.Context, _, _ string, _ any, _ map[string]any) (any, error) {
			capturedID, _ = reqid.FromContext(ctx)
			return "world", nil
		},
	}
	h := newTestHandler(t, rt)
	w := postQuery(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotZero(t, capturedID)
	assert.Equal(t, capturedID.String(), w.Header().Get("X-Request-Id"))
}

func TestGraphiQLServedOnHTML(t *testing.T) {
	h := newTestHandler(t, helloRuntime())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "GraphiQL")
}

func TestErrorsCarryPathAndCode(t *testing.T) {
	rt := &executor.MockRuntime{
		ResolveFieldFn: func(context.Context, string, string, any, map[string]any) (any, error) {
			return nil, assert.AnError
		},
	}
	h := newTestHandler(t, rt)
	w := postQuery(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Errors []struct {
			Message string `json:"message"`
			Path    []any  `json:"path"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []any{"hello"}, res.Errors[0].Path)
}
