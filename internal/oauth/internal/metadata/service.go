// Package metadata serves OAuth 2.0 Protected Resource Metadata (RFC 9728).
package metadata

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// WellKnownPath is where the metadata document is served.
const WellKnownPath = "/.well-known/oauth-protected-resource"

// ProtectedResourceMetadata is the RFC 9728 metadata document.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
	ResourceName           string   `json:"resource_name,omitempty"`
}

// Service builds the metadata document once and serves copies of it.
type Service struct {
	doc         ProtectedResourceMetadata
	metadataURL string
}

// NewService creates a metadata service for the resource at baseURL, whose
// tokens are issued by authorizationServers.
func NewService(baseURL string, authorizationServers, scopesSupported []string, resourceName string) *Service {
	resource := strings.TrimRight(baseURL, "/")
	return &Service{
		doc: ProtectedResourceMetadata{
			Resource:               resource,
			AuthorizationServers:   slices.Clone(authorizationServers),
			ScopesSupported:        slices.Clone(scopesSupported),
			BearerMethodsSupported: []string{"header"},
			ResourceName:           resourceName,
		},
		metadataURL: resource + WellKnownPath,
	}
}

// GetMetadata returns the metadata document. Callers may modify the result.
func (s *Service) GetMetadata(_ context.Context) (*ProtectedResourceMetadata, error) {
	doc := s.doc
	doc.AuthorizationServers = slices.Clone(s.doc.AuthorizationServers)
	doc.ScopesSupported = slices.Clone(s.doc.ScopesSupported)
	doc.BearerMethodsSupported = slices.Clone(s.doc.BearerMethodsSupported)
	return &doc, nil
}

// GetMetadataURL returns the absolute URL of the metadata document. It is
// advertised as resource_metadata in authentication challenges.
func (s *Service) GetMetadataURL() string {
	return s.metadataURL
}

// Validate checks the document against RFC 9728 requirements.
func (s *Service) Validate() error {
	return ValidateMetadata(&s.doc)
}

// ValidateMetadata checks that resource is an absolute URL and that at least
// one authorization server is listed, each over HTTPS or on localhost.
func ValidateMetadata(m *ProtectedResourceMetadata) error {
	if m.Resource == "" {
		return fmt.Errorf("resource field is required")
	}
	if u, err := url.Parse(m.Resource); err != nil || !u.IsAbs() {
		return fmt.Errorf("resource must be an absolute URL: %q", m.Resource)
	}
	if len(m.AuthorizationServers) == 0 {
		return fmt.Errorf("authorization_servers must contain at least one server")
	}
	for _, server := range m.AuthorizationServers {
		if server == "" {
			return fmt.Errorf("authorization server URL cannot be empty")
		}
		if !strings.HasPrefix(server, "https://") && !strings.HasPrefix(server, "http://localhost") {
			return fmt.Errorf("authorization server URL must use HTTPS (or http://localhost for testing): %s", server)
		}
	}
	return nil
}
