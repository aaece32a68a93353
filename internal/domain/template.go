package domain

import "strings"

// ServicePlaceholder marks the per-service part of a naming template.
const ServicePlaceholder = "{service}"

// NamingTemplate is a name with exactly one {service} placeholder, or empty
// for monolithic SDKs.
type NamingTemplate string

// HasPlaceholder reports whether the template contains the placeholder.
func (t NamingTemplate) HasPlaceholder() bool {
	return strings.Contains(string(t), ServicePlaceholder)
}

// Expand substitutes the service token into the template.
func (t NamingTemplate) Expand(service string) string {
	return strings.Replace(string(t), ServicePlaceholder, service, 1)
}

// Extract returns the service token that expands the template into name.
func (t NamingTemplate) Extract(name string) (string, bool) {
	prefix, suffix, ok := strings.Cut(string(t), ServicePlaceholder)
	if !ok {
		return "", false
	}
	if len(name) <= len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}

// Literal returns the template text without the placeholder.
func (t NamingTemplate) Literal() string {
	return strings.Replace(string(t), ServicePlaceholder, "", 1)
}
