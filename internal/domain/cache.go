package domain

// ParseCacheVersion is bumped whenever the PackageSurface shape changes.
const ParseCacheVersion = 1

// ParseCache holds package surfaces from earlier runs keyed by package name.
type ParseCache struct {
	Version int                      `json:"version"`
	Entries map[string]CachedSurface `json:"entries"`
}

// CachedSurface is a surface together with the fingerprint of the sources
// it was parsed from.
type CachedSurface struct {
	Fingerprint string          `json:"fingerprint"`
	Surface     *PackageSurface `json:"surface"`
}

// NewParseCache returns an empty cache of the current version.
func NewParseCache() *ParseCache {
	return &ParseCache{Version: ParseCacheVersion, Entries: make(map[string]CachedSurface)}
}

// Lookup returns the cached surface of name if its fingerprint still matches.
func (c *ParseCache) Lookup(name, fingerprint string) (*PackageSurface, bool) {
	if c == nil || c.Version != ParseCacheVersion || fingerprint == "" {
		return nil, false
	}
	e, ok := c.Entries[name]
	if !ok || e.Fingerprint != fingerprint || e.Surface == nil {
		return nil, false
	}
	return e.Surface, true
}
