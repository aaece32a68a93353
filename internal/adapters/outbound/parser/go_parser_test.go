package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/parser"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const goSDK = "../../../../testdata/go-sdk"

func parseGoModule(t *testing.T, name, dir string) *domain.PackageSurface {
	t.Helper()
	s, err := parser.NewGoParser().ParseModule(context.Background(), domain.PackageInfo{Name: name, Path: dir})
	require.NoError(t, err)
	return s
}

func TestGoParser_ServiceModule(t *testing.T) {
	s := parseGoModule(t, "example.com/cloud-sdk-go/service/s3", goSDK+"/service/s3")

	assert.Equal(t, "example.com/cloud-sdk-go/service/s3", s.Ident)
	assert.Equal(t, ".", s.Separator)
	assert.Equal(t, 2, s.Files, "test files are skipped")

	client, ok := s.FindType("Client")
	require.True(t, ok)
	assert.True(t, client.Root)
	assert.Equal(t, domain.KindStruct, client.Kind)
	assert.Equal(t, "example.com/cloud-sdk-go/service/s3.Client", client.Path)

	_, ok = s.FindType("TestOnlyError")
	assert.False(t, ok)

	assert.True(t, s.HasFunction("NewFromConfig"))
	_, ok = findFunc(s, "Client", "invoke")
	assert.False(t, ok, "unexported methods are skipped")

	newFn, ok := findFunc(s, "", "New")
	require.True(t, ok)
	require.Len(t, newFn.Params, 2)
	assert.Equal(t, domain.Param{Name: "options", Type: "Options"}, newFn.Params[0])
	assert.Equal(t, "...func(*Options)", newFn.Params[1].Type)
	assert.True(t, newFn.Params[1].Optional)
}

func TestGoParser_ErrorCodeMethods(t *testing.T) {
	s := parseGoModule(t, "example.com/cloud-sdk-go/service/s3", goSDK+"/service/s3")

	codes, ok := s.FindType("ErrorCode")
	require.True(t, ok)
	assert.Equal(t, domain.KindErrorSet, codes.Kind)
	assert.False(t, codes.Root)
	assert.Equal(t, "example.com/cloud-sdk-go/service/s3/types.ErrorCode", codes.Path)
	assert.Equal(t, []string{"NoSuchBucket", "NoSuchKey", "BucketAlreadyOwnedByYou", "AccessDenied"}, codes.Variants)
}

func TestGoParser_TypedErrorConstants(t *testing.T) {
	s := parseGoModule(t, "example.com/cloud-sdk-go/service/ec2", goSDK+"/service/ec2")

	codes, ok := s.FindType("ErrorCode")
	require.True(t, ok)
	assert.Equal(t, domain.KindErrorSet, codes.Kind)
	assert.Equal(t, []string{
		"InvalidParameterValue", "RequestLimitExceeded", "UnauthorizedOperation", "ResourceNotFound",
	}, codes.Variants)

	count := 0
	for _, ty := range s.Types {
		if ty.Name == "ErrorCode" {
			count++
		}
	}
	assert.Equal(t, 1, count, "declared type and error set are merged")
}

func TestGoParser_RootModuleSkipsNestedModulesAndInternal(t *testing.T) {
	s := parseGoModule(t, "example.com/cloud-sdk-go", goSDK)

	assert.Equal(t, 1, s.Files)
	apiErr, ok := s.FindType("APIError")
	require.True(t, ok)
	assert.Equal(t, domain.KindInterface, apiErr.Kind)
	assert.Equal(t, "example.com/cloud-sdk-go.APIError", apiErr.Path)

	_, ok = s.FindType("Reader")
	assert.False(t, ok)
	_, ok = s.FindType("Client")
	assert.False(t, ok)
}

func TestGoParser_ConfigModule(t *testing.T) {
	s := parseGoModule(t, "example.com/cloud-sdk-go/config", goSDK+"/config")

	timeout, ok := findFunc(s, "", "WithTimeout")
	require.True(t, ok)
	assert.Equal(t, domain.Param{Name: "v", Type: "*time.Duration", Optional: true}, timeout.Params[0])

	load, ok := findFunc(s, "", "LoadDefaultConfig")
	require.True(t, ok)
	assert.Equal(t, "context.Context", load.Params[0].Type)

	_, ok = s.FindType("LoadOptions")
	assert.True(t, ok)
}

func TestGoParser_SyntaxErrorIsWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/broken\n")
	writeFile(t, dir, "broken.go", "package broken\n\nfunc Open( {\n")

	_, err := parser.NewGoParser().ParseModule(context.Background(), domain.PackageInfo{Name: "example.com/broken", Path: dir})

	var warn *domain.PackageParseWarning
	require.ErrorAs(t, err, &warn)
	assert.Equal(t, "broken.go", warn.File)
}
