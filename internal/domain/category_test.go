package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

func TestErrorPattern_Matches(t *testing.T) {
	assert.True(t, domain.Exact("NotFound").Matches("NotFound"))
	assert.False(t, domain.Exact("NotFound").Matches("NotFoundException"))
	assert.True(t, domain.Prefix("NoSuch").Matches("NoSuchBucket"))
	assert.True(t, domain.Suffix("Exception").Matches("ThrottlingException"))
	assert.True(t, domain.Contains("Limit").Matches("RequestLimitExceeded"))
	assert.False(t, domain.Contains("Limit").Matches("Success"))
}

func TestParseErrorPattern_RoundTrip(t *testing.T) {
	for _, s := range []string{"NotFound", "NoSuch*", "*Exception", "*Limit*"} {
		p, err := domain.ParseErrorPattern(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, p.String())
	}

	p, _ := domain.ParseErrorPattern("*Limit*")
	assert.Equal(t, domain.PatternContains, p.Kind)
	assert.Equal(t, "contains", p.Kind.String())
}

func TestParseErrorPattern_Rejects(t *testing.T) {
	for _, s := range []string{"", "*", "**", "No*Such"} {
		_, err := domain.ParseErrorPattern(s)
		assert.Error(t, err, s)
	}
}

func TestCategoryBucket_PreservesOrderAndDedupes(t *testing.T) {
	b := domain.NewCategoryBucket()

	assert.True(t, b.Add(domain.CategoryNotFound, domain.Exact("NotFound")))
	assert.True(t, b.Add(domain.CategoryNotFound, domain.Prefix("NoSuch")))
	assert.False(t, b.Add(domain.CategoryNotFound, domain.Prefix("NoSuch")))
	assert.True(t, b.Add(domain.CategoryNotFound, domain.Exact("NoSuch")))
	b.Add(domain.CategoryUnavailable, domain.Exact("ServiceUnavailable"))

	assert.Equal(t, []string{"NotFound", "NoSuch*", "NoSuch"}, b.Strings(domain.CategoryNotFound))
	assert.Equal(t, []domain.Category{domain.CategoryNotFound, domain.CategoryUnavailable}, b.Categories())
	assert.Equal(t, 4, b.Len())

	c, ok := b.Classify("NoSuchKey")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryNotFound, c)
}

func TestCategoryBucket_MarshalJSON(t *testing.T) {
	b := domain.NewCategoryBucket()
	b.Add(domain.CategoryPermissionDenied, domain.Exact("AccessDenied"))

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"permission_denied":["AccessDenied"]}`, string(data))
}

func TestCategoryBucket_NilSafe(t *testing.T) {
	var b *domain.CategoryBucket
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Categories())
	assert.Empty(t, b.Strings(domain.CategoryNotFound))
}

func TestCategory_IsValid(t *testing.T) {
	assert.Len(t, domain.AllCategories, 9)
	for _, c := range domain.AllCategories {
		assert.True(t, c.IsValid())
	}
	assert.False(t, domain.Category("internal").IsValid())
}
