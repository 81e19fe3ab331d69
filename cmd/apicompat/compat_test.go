package main

import (
	"testing"

	"agora/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
swagger: "2.0"
paths:
  /v1/boards:
    get:
      parameters:
        - name: page
          in: query
      responses:
        "200": {description: OK}
        "400": {description: Bad Request}
  /v1/boards/{id}:
    parameters:
      - name: id
        in: path
        required: true
    get:
      responses:
        "200": {description: OK}
    delete:
      responses:
        "204": {description: No Content}
  /v1/legacy:
    get:
      responses:
        "200": {description: OK}
`

func TestParseDocSkipsNonMethodKeys(t *testing.T) {
	doc, err := parseDoc([]byte(baseYAML))
	require.NoError(t, err)
	require.Len(t, doc.Paths, 3)
	assert.Len(t, doc.Paths["/v1/boards/{id}"], 2)
	assert.Contains(t, doc.Paths["/v1/boards"]["get"].Responses, "400")
}

func TestParseDocRequiresPaths(t *testing.T) {
	_, err := parseDoc([]byte(`swagger: "2.0"`))
	assert.Error(t, err)
}

func TestBreakingChanges(t *testing.T) {
	base, err := parseDoc([]byte(baseYAML))
	require.NoError(t, err)

	t.Run("identical documents", func(t *testing.T) {
		assert.Empty(t, breakingChanges(base, base))
	})

	t.Run("removals and new required parameters", func(t *testing.T) {
		revision, err := parseDoc([]byte(`{
  "paths": {
    "/v1/boards": {
      "get": {
        "parameters": [
          {"name": "page", "in": "query", "required": true},
          {"name": "size", "in": "query"}
        ],
        "responses": {"200": {"description": "OK"}}
      },
      "post": {"responses": {"201": {"description": "Created"}}}
    },
    "/v1/boards/{id}": {
      "get": {"responses": {"200": {"description": "OK"}}}
    }
  }
}`))
		require.NoError(t, err)

		assert.Equal(t, []string{
			"new required query parameter: GET /v1/boards -> page",
			"removed operation: DELETE /v1/boards/{id}",
			"removed path: /v1/legacy",
			"removed response code: GET /v1/boards -> 400",
		}, breakingChanges(base, revision))
	})

	t.Run("additions are compatible", func(t *testing.T) {
		revision, err := parseDoc([]byte(baseYAML + `
  /v1/new:
    get:
      responses:
        "200": {description: OK}
`))
		require.NoError(t, err)
		assert.Empty(t, breakingChanges(base, revision))
	})
}

func TestBuiltInDocs(t *testing.T) {
	doc, err := parseDoc([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)

	tree := doc.Paths["/v1/boards/{boardId}/comments"]
	require.Contains(t, tree, "get")
	require.Contains(t, tree, "post")
	assert.Contains(t, tree["post"].Responses, "409")
	assert.Empty(t, breakingChanges(doc, doc))
}
