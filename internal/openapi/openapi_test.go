package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	doc := Build("https://deck.example.com", "dev")

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var parsed struct {
		OpenAPI string `json:"openapi"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths      map[string]map[string]json.RawMessage `json:"paths"`
		Components struct {
			SecuritySchemes map[string]struct {
				Type   string `json:"type"`
				Scheme string `json:"scheme"`
			} `json:"securitySchemes"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))

	assert.Equal(t, "3.0.0", parsed.OpenAPI)
	require.Len(t, parsed.Servers, 1)
	assert.Equal(t, "https://deck.example.com", parsed.Servers[0].URL)
	assert.Equal(t, "http", parsed.Components.SecuritySchemes["bearerAuth"].Type)
	assert.Equal(t, "bearer", parsed.Components.SecuritySchemes["bearerAuth"].Scheme)

	tests := []struct {
		path   string
		method string
	}{
		{"/auth/signup", "post"},
		{"/auth/login", "post"},
		{"/apps", "get"},
		{"/apps/order", "put"},
		{"/me/apps", "get"},
		{"/me/apps/order", "put"},
		{"/apps/catalog", "get"},
		{"/memos", "get"},
		{"/memos", "post"},
		{"/memos/{id}", "get"},
		{"/memos/{id}", "patch"},
		{"/memos/{id}", "delete"},
		{"/health", "get"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			ops, ok := parsed.Paths[tt.path]
			require.True(t, ok, "path missing")
			assert.Contains(t, ops, tt.method)
		})
	}
}
