// Package capability maps granted scopes to the MCP tools, prompts and
// resources a caller may use.
package capability

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// Table maps a scope to the capabilities it unlocks.
type Table map[string]oauth.Capabilities

// DefaultTable returns the table for the mcp:read, mcp:write and mcp:admin
// scopes.
func DefaultTable() Table {
	return Table{
		oauth.ScopeRead: {
			Tools:     []string{"echo", "list_items", "get_item"},
			Prompts:   []string{"summarize"},
			Resources: []string{"items://catalog", "config://server"},
		},
		oauth.ScopeWrite: {
			Tools:     []string{"create_item", "update_item", "delete_item"},
			Resources: []string{"items://catalog"},
		},
		oauth.ScopeAdmin: {
			Tools:     []string{"reload_config", "rotate_logs"},
			Prompts:   []string{"audit_report"},
			Resources: []string{"config://server", "logs://recent"},
		},
	}
}

// LoadTable reads a YAML table of the form
//
//	mcp:read:
//	  tools: [echo]
//	  prompts: [summarize]
//	  resources: ["items://catalog"]
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capability table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML capability table. Unknown fields are rejected.
func ParseTable(data []byte) (Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var table Table
	if err := dec.Decode(&table); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse capability table: %w", err)
	}
	for scope := range table {
		if scope == "" {
			return nil, fmt.Errorf("parse capability table: empty scope name")
		}
	}
	return table, nil
}

// Mapper resolves capabilities from a fixed table. It is immutable and safe
// for concurrent use.
type Mapper struct {
	table Table
}

// NewMapper copies table into a new Mapper.
func NewMapper(table Table) *Mapper {
	copied := make(Table, len(table))
	for scope, caps := range table {
		copied[scope] = oauth.Capabilities{
			Tools:     slices.Clone(caps.Tools),
			Prompts:   slices.Clone(caps.Prompts),
			Resources: slices.Clone(caps.Resources),
		}
	}
	return &Mapper{table: copied}
}

// CapabilitiesForScopes returns the union of the capabilities of every
// granted scope, each list sorted and de-duplicated. Unknown scopes
// contribute nothing; the lists are never nil.
func (m *Mapper) CapabilitiesForScopes(scopes []string) oauth.Capabilities {
	var tools, prompts, resources []string
	for _, s := range scopes {
		caps, ok := m.table[s]
		if !ok {
			continue
		}
		tools = append(tools, caps.Tools...)
		prompts = append(prompts, caps.Prompts...)
		resources = append(resources, caps.Resources...)
	}
	return oauth.Capabilities{
		Tools:     sortedUnique(tools),
		Prompts:   sortedUnique(prompts),
		Resources: sortedUnique(resources),
	}
}

// Scopes returns the scopes the table knows about, sorted.
func (m *Mapper) Scopes() []string {
	out := make([]string, 0, len(m.table))
	for s := range m.table {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	slices.Sort(in)
	return slices.Compact(in)
}
