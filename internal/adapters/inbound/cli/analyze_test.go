package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdkprobe/sdkprobe/internal/adapters/inbound/cli"
)

const fixtures = "../../../../testdata"

// copyFixture copies a fixture into a temp dir so runs can write history
// and cache files.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.CopyFS(dst, os.DirFS(filepath.Join(fixtures, name))))
	return dst
}

// execute runs the root command and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCommand_YAMLToStdout(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")

	stdout, stderr, err := execute(t, "analyze", dir, "--provider", "aws")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# SDK Analysis Result")
	assert.Contains(t, stdout, "name: aws")
	assert.Contains(t, stdout, "display_name: Aws")
	assert.Contains(t, stdout, `crate_pattern: "aws-sdk-{service}"`)
	assert.Contains(t, stderr, "sdkprobe")
	assert.Contains(t, stderr, "crate pattern")
}

func TestAnalyzeCommand_OutputFile(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")
	out := filepath.Join(t.TempDir(), "aws.yaml")

	stdout, stderr, err := execute(t, "analyze", dir, "--provider", "aws", "-o", out, "--no-record")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")

	_, err = os.Stat(filepath.Join(dir, ".sdkprobe", "history", "runs.json"))
	assert.True(t, os.IsNotExist(err), "--no-record skips history")
}

func TestAnalyzeCommand_OutputFromConfigIsRelativeToRoot(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sdkprobe.yaml"),
		[]byte("provider: aws\noutput: metadata/aws.yaml\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "metadata"), 0o755))

	_, _, err := execute(t, "analyze", filepath.Join(dir, "sdk", "s3"), "--quiet", "--no-record")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "metadata", "aws.yaml"))
	assert.NoError(t, err)
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")

	stdout, stderr, err := execute(t, "analyze", dir, "--provider", "aws", "--json", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "aws", out["provider"])
	assert.Contains(t, out, "confidence")
	assert.Contains(t, out, "warnings")
}

func TestAnalyzeCommand_Threshold(t *testing.T) {
	dir := copyFixture(t, "k8s-openapi")

	stdout, _, err := execute(t, "analyze", dir, "--provider", "k8s", "--quiet", "--no-record")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# REVIEW: confidence 0.50")

	stdout, _, err = execute(t, "analyze", dir, "--provider", "k8s", "--threshold", "0", "--quiet", "--no-record")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "# REVIEW")

	stdout, _, err = execute(t, "analyze", dir, "--provider", "k8s", "--threshold", "1.5", "--quiet", "--no-record")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 1")
	assert.Empty(t, stdout)
}

func TestAnalyzeCommand_MinConfidence(t *testing.T) {
	dir := copyFixture(t, "k8s-openapi")

	_, _, err := execute(t, "analyze", dir, "--provider", "k8s", "--min", "0.9", "--quiet", "--no-record")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")

	_, _, err = execute(t, "analyze", dir, "--provider", "k8s", "--min", "0.1", "--quiet", "--no-record")
	assert.NoError(t, err)
}

func TestAnalyzeCommand_ProviderRequired(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")

	_, _, err := execute(t, "analyze", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider name required")
}

func TestAnalyzeCommand_MissingWorkspace(t *testing.T) {
	_, _, err := execute(t, "analyze", t.TempDir(), "--provider", "aws")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis failed")
}

func TestAnalyzeCommand_Exclude(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")

	stdout, _, err := execute(t, "analyze", dir, "--provider", "aws", "--exclude", "aws-sdk-ec2", "--json", "--quiet", "--no-record")
	require.NoError(t, err)
	assert.NotContains(t, stdout, `"name": "aws-sdk-ec2"`)
}

func TestAnalyzeCommand_JSONToFile(t *testing.T) {
	dir := copyFixture(t, "cargo-sdk")
	out := filepath.Join(t.TempDir(), "aws.json")

	stdout, _, err := execute(t, "analyze", dir, "--provider", "aws", "--json", "-o", out, "--quiet", "--no-record")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "aws", result["provider"])
}
