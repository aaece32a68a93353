package analysis_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdkprobe/sdkprobe/internal/domain"
	"github.com/sdkprobe/sdkprobe/internal/domain/analysis"
)

func rustSurface(crate string, async bool, types ...domain.TypeDecl) *domain.PackageSurface {
	ident := strings.ReplaceAll(crate, "-", "_")
	s := &domain.PackageSurface{Package: crate, Ident: ident, Separator: "::", Types: types, Files: 1}
	if async {
		s.Functions = append(s.Functions, domain.FuncDecl{Name: "send", Receiver: "Fluent", Async: true})
	}
	return s
}

func rootClient(crate string) domain.TypeDecl {
	ident := strings.ReplaceAll(crate, "-", "_")
	return domain.TypeDecl{Name: "Client", Kind: domain.KindStruct, Root: true, Path: ident + "::Client"}
}

func servicesFor(names ...string) domain.CratePattern {
	res := analysis.DetectCratePattern(cargoWorkspace(names...), "", analysis.NewBlocklist())
	return res.Value
}

func TestDetectClientType_AllAgree(t *testing.T) {
	names := []string{"aws-sdk-s3", "aws-sdk-ec2", "aws-sdk-dynamodb"}
	crate := servicesFor(names...)
	surfaces := domain.Surfaces{}
	for _, n := range names {
		surfaces[n] = domain.ParsedPackage{Surface: rustSurface(n, true, rootClient(n))}
	}

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.Equal(t, domain.NamingTemplate("aws_sdk_{service}::Client"), res.Value.Template)
	assert.Equal(t, 1.0, res.Confidence)
	assert.True(t, res.Value.Async)
	for _, svc := range crate.Services {
		ident := strings.ReplaceAll(svc.Package.Name, "-", "_")
		assert.Equal(t, ident+"::Client", res.Value.Template.Expand(svc.Token))
	}
}

func TestDetectClientType_ParseFailureNotCounted(t *testing.T) {
	names := []string{"aws-sdk-s3", "aws-sdk-ec2", "aws-sdk-dynamodb"}
	crate := servicesFor(names...)
	surfaces := domain.Surfaces{
		"aws-sdk-s3":  {Surface: rustSurface("aws-sdk-s3", false, rootClient("aws-sdk-s3"))},
		"aws-sdk-ec2": {Surface: rustSurface("aws-sdk-ec2", false, rootClient("aws-sdk-ec2"))},
		"aws-sdk-dynamodb": {Warning: &domain.PackageParseWarning{
			Package: "aws-sdk-dynamodb", Err: errors.New("unbalanced delimiter"),
		}},
	}

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.Equal(t, 1.0, res.Confidence)
	assert.Contains(t, res.Evidence, "1 skipped")
	assert.False(t, res.Value.Async)
}

func TestDetectClientType_MissingClientLowersAgreement(t *testing.T) {
	names := []string{"aws-sdk-s3", "aws-sdk-ec2", "aws-sdk-dynamodb", "aws-sdk-sqs"}
	crate := servicesFor(names...)
	surfaces := domain.Surfaces{}
	for _, n := range names[:3] {
		surfaces[n] = domain.ParsedPackage{Surface: rustSurface(n, false, rootClient(n))}
	}
	surfaces["aws-sdk-sqs"] = domain.ParsedPackage{Surface: rustSurface("aws-sdk-sqs", false)}

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.InDelta(t, 0.75, res.Confidence, 1e-9)
}

func TestDetectClientType_PrefersRootExposedType(t *testing.T) {
	crate := servicesFor("aws-sdk-s3", "aws-sdk-ec2")
	nested := func(n string) domain.TypeDecl {
		ident := strings.ReplaceAll(n, "-", "_")
		return domain.TypeDecl{Name: "Client", Kind: domain.KindStruct, Path: ident + "::client::Client"}
	}
	surfaces := domain.Surfaces{}
	for _, s := range crate.Services {
		n := s.Package.Name
		surfaces[n] = domain.ParsedPackage{Surface: rustSurface(n, false, nested(n), rootClient(n))}
	}

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.Equal(t, domain.NamingTemplate("aws_sdk_{service}::Client"), res.Value.Template)
}

func TestDetectClientType_NoClient(t *testing.T) {
	crate := servicesFor("aws-sdk-s3", "aws-sdk-ec2")
	surfaces := domain.Surfaces{
		"aws-sdk-s3":  {Surface: rustSurface("aws-sdk-s3", false)},
		"aws-sdk-ec2": {Surface: rustSurface("aws-sdk-ec2", false)},
	}

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.Empty(t, res.Value.Template)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestDetectClientType_NothingParsed(t *testing.T) {
	crate := servicesFor("aws-sdk-s3", "aws-sdk-ec2")

	res := analysis.DetectClientType(crate, domain.Surfaces{}, 15)

	assert.Equal(t, 0.0, res.Confidence)
	assert.Contains(t, res.Evidence, "2 skipped")
}

func TestDetectClientType_MonolithicSharedClient(t *testing.T) {
	crate := servicesFor("kube-client")
	require.True(t, crate.Monolithic)
	surfaces := domain.Surfaces{
		"kube-client": {Surface: rustSurface("kube-client", true, rootClient("kube-client"))},
	}

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.Empty(t, res.Value.Template)
	assert.Equal(t, "kube_client::Client", res.Value.SharedType)
	assert.Equal(t, "kube_client::Client", res.Value.TypePath())
	assert.Equal(t, 1.0, res.Confidence)
}

func TestDetectClientType_GoImportPath(t *testing.T) {
	root := "github.com/aws/aws-sdk-go-v2"
	ws := &domain.WorkspaceModel{Root: "/sdk", Kind: domain.WorkspaceGo, RootModule: root}
	surfaces := domain.Surfaces{}
	for _, svc := range []string{"s3", "ec2"} {
		name := root + "/service/" + svc
		ws.Packages = append(ws.Packages, domain.PackageInfo{Name: name})
		surfaces[name] = domain.ParsedPackage{Surface: &domain.PackageSurface{
			Package: name, Ident: name, Separator: ".",
			Types: []domain.TypeDecl{{Name: "Client", Kind: domain.KindStruct, Root: true, Path: name + ".Client"}},
		}}
	}
	crate := analysis.DetectCratePattern(ws, "aws", analysis.NewBlocklist()).Value

	res := analysis.DetectClientType(crate, surfaces, 15)

	assert.Equal(t, domain.NamingTemplate(root+"/service/{service}.Client"), res.Value.Template)
	assert.False(t, res.Value.Async)
}

func TestSample_StrideBound(t *testing.T) {
	var services []domain.ServicePackage
	for i := 0; i < 40; i++ {
		services = append(services, domain.ServicePackage{Token: fmt.Sprintf("svc%02d", i)})
	}

	got := analysis.Sample(services, 15)

	require.Len(t, got, 15)
	assert.Equal(t, "svc00", got[0].Token)
	assert.Equal(t, services, analysis.Sample(services, 0))
	assert.Len(t, analysis.Sample(services[:5], 15), 5)
}

func TestTemplatize(t *testing.T) {
	tmpl, ok := analysis.Templatize("aws_sdk_s3::Client", "aws_sdk_s3", "s3")
	require.True(t, ok)
	assert.Equal(t, domain.NamingTemplate("aws_sdk_{service}::Client"), tmpl)

	tmpl, ok = analysis.Templatize("google_cloud_pub_sub::Client", "google_cloud_pub_sub", "pub-sub")
	require.True(t, ok)
	assert.Equal(t, domain.NamingTemplate("google_cloud_{service}::Client"), tmpl)

	_, ok = analysis.Templatize("other::Client", "other", "s3")
	assert.False(t, ok)
}
