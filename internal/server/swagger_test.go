package server

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routeParam = regexp.MustCompile(`:(\w+)`)

func TestSwaggerDocServed(t *testing.T) {
	_, app := newTestServer(t, nil)

	var doc struct {
		BasePath string                            `json:"basePath"`
		Info     struct{ Title string }            `json:"info"`
		Paths    map[string]map[string]interface{} `json:"paths"`
	}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/swagger/doc.json", "", nil, &doc))
	assert.Equal(t, "/api", doc.BasePath)
	assert.Equal(t, "RecipeHub API", doc.Info.Title)
	require.NotEmpty(t, doc.Paths)

	for _, r := range app.GetRoutes(true) {
		if r.Method == http.MethodHead || !strings.HasPrefix(r.Path, "/api/") || strings.HasPrefix(r.Path, "/api/swagger") {
			continue
		}
		path := strings.TrimSuffix(strings.TrimPrefix(r.Path, "/api"), "/")
		path = routeParam.ReplaceAllString(path, "{$1}")
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, "%s %s is undocumented", r.Method, r.Path) {
			continue
		}
		assert.Contains(t, ops, strings.ToLower(r.Method), "%s %s is undocumented", r.Method, r.Path)
	}
}
