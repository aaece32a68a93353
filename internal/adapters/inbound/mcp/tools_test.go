package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtures = "../../../../testdata"

// newHandlers serves a private copy of a fixture so cache and history
// writes stay out of testdata.
func newHandlers(t *testing.T, fixture string) *handlers {
	t.Helper()
	dst := filepath.Join(t.TempDir(), fixture)
	require.NoError(t, os.CopyFS(dst, os.DirFS(filepath.Join(fixtures, fixture))))
	return &handlers{workspacePath: dst, logger: slog.New(slog.DiscardHandler), version: "test"}
}

func callTool(name string, args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleClassifyErrors(t *testing.T) {
	h := &handlers{logger: slog.New(slog.DiscardHandler)}

	res, err := h.handleClassifyErrors(context.Background(), callTool("sdkprobe_classify_errors", map[string]any{
		"variants": "NoSuchBucket, AccessDenied\nThrottlingException",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Value struct {
			Buckets map[string][]string `json:"buckets"`
		} `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 1.0, out.Confidence)
	assert.Equal(t, []string{"NoSuch*"}, out.Value.Buckets["not_found"])
	assert.Equal(t, []string{"AccessDenied"}, out.Value.Buckets["permission_denied"])
}

func TestHandleClassifyErrors_MissingVariants(t *testing.T) {
	h := &handlers{logger: slog.New(slog.DiscardHandler)}

	res, err := h.handleClassifyErrors(context.Background(), callTool("sdkprobe_classify_errors", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.handleClassifyErrors(context.Background(), callTool("sdkprobe_classify_errors", map[string]any{"variants": " , \n"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleAnalyze_JSON(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	res, err := h.handleAnalyze(context.Background(), callTool("sdkprobe_analyze", map[string]any{"provider": "aws"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "aws", out["provider"])

	_, err = os.Stat(filepath.Join(h.workspacePath, ".sdkprobe", "history", "runs.json"))
	assert.True(t, os.IsNotExist(err), "runs are not recorded unless asked")
}

func TestHandleAnalyze_YAMLAndRecord(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	res, err := h.handleAnalyze(context.Background(), callTool("sdkprobe_analyze", map[string]any{
		"provider": "aws",
		"format":   "yaml",
		"record":   true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	text := resultText(t, res)
	assert.Contains(t, text, "# SDK Analysis Result")
	assert.Contains(t, text, `crate_pattern: "aws-sdk-{service}"`)

	hist, err := h.handleHistory(context.Background(), callTool("sdkprobe_history", nil))
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, hist)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "aws", entries[0]["provider"])
}

func TestHandleAnalyze_Errors(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	res, err := h.handleAnalyze(context.Background(), callTool("sdkprobe_analyze", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "provider is required")

	res, err = h.handleAnalyze(context.Background(), callTool("sdkprobe_analyze", map[string]any{"provider": "aws", "format": "xml"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown format")
}

func TestHandleHistory_Empty(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	res, err := h.handleHistory(context.Background(), callTool("sdkprobe_history", nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))
}

func TestHandleWorkspace(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	res, err := h.handleWorkspace(context.Background(), callTool("sdkprobe_workspace", map[string]any{"provider": "aws"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out struct {
		Members []struct {
			Package struct {
				Name string `json:"name"`
			} `json:"package"`
			Role string `json:"role"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Len(t, out.Members, 6)
}

func TestHandleWorkspace_MissingPath(t *testing.T) {
	h := &handlers{logger: slog.New(slog.DiscardHandler)}

	res, err := h.handleWorkspace(context.Background(), callTool("sdkprobe_workspace", map[string]any{
		"path": filepath.Join(t.TempDir(), "missing"),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMemberResource(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	var req mcplib.ReadResourceRequest
	req.Params.URI = "sdkprobe://members/aws-config"
	req.Params.Arguments = map[string]any{"name": []string{"aws-config"}}

	contents, err := h.memberResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, req.Params.URI, text.URI)
	assert.Contains(t, text.Text, `"role": "config"`)

	req.Params.Arguments = map[string]any{"name": "aws-missing"}
	_, err = h.memberResource(context.Background(), req)
	assert.Error(t, err)
}

func TestWorkspaceResource(t *testing.T) {
	h := newHandlers(t, "cargo-sdk")

	contents, err := h.workspaceResource(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, workspaceURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
}

func TestTemplateArg(t *testing.T) {
	assert.Equal(t, "a", templateArg(map[string]any{"name": "a"}, "name"))
	assert.Equal(t, "b", templateArg(map[string]any{"name": []string{"b", "c"}}, "name"))
	assert.Equal(t, "", templateArg(map[string]any{"name": []string{}}, "name"))
	assert.Equal(t, "", templateArg(nil, "name"))
}
