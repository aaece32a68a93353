package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdkprobe/sdkprobe/internal/domain/analysis"
)

func TestBlocklist_IsInfrastructure(t *testing.T) {
	bl := analysis.NewBlocklist()

	infra := []string{
		"aws-config", "aws-smithy-types", "aws-credential-types", "aws-sigv4",
		"aws-smithy-runtime-api", "config", "credentials", "internal/ini",
		"feature/s3/manager", "aws_types", "Aws-Runtime",
	}
	for _, name := range infra {
		assert.True(t, bl.IsInfrastructure(name), name)
	}

	services := []string{"aws-sdk-s3", "aws-sdk-appconfig", "service/ec2", "k8s-openapi", "aws-sdk-sts"}
	for _, name := range services {
		assert.False(t, bl.IsInfrastructure(name), name)
	}
}

func TestBlocklist_ExtraFragmentsExtendTable(t *testing.T) {
	base := analysis.NewBlocklist()
	extended := analysis.NewBlocklist(" Gen ", "")

	assert.False(t, base.IsInfrastructure("aws-gen"))
	assert.True(t, extended.IsInfrastructure("aws-gen"))
	assert.Len(t, extended.Fragments(), len(analysis.InfraFragments())+1)
	assert.GreaterOrEqual(t, len(analysis.InfraFragments()), 24)
}

func TestBlocklist_ZeroValueUsesBuiltins(t *testing.T) {
	var bl analysis.Blocklist

	assert.True(t, bl.IsInfrastructure("aws-config"))
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"aws", "sdk", "s3"}, analysis.Segments("aws-sdk-s3"))
	assert.Equal(t, []string{"service", "s3"}, analysis.Segments("service/s3"))
	assert.Equal(t, []string{"google", "cloud", "v1"}, analysis.Segments("google_cloud.v1"))
}
