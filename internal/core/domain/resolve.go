// Package domain contains core domain types for artifact resolution and caching.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known resolve parameters carried on ResolveSource.Parameters.
const (
	// ParamUsePersistentCache opts a source into the shared disk cache when set to "true".
	ParamUsePersistentCache = "use_persistent_cache"

	// ParamTeam scopes persistent cache entries to a tenant. Defaults to DefaultTeam.
	ParamTeam = "team"

	// ParamChecksum carries the expected content checksum of the artifact, hex encoded.
	ParamChecksum = "checksum"

	// ParamChecksumAlgorithm names the algorithm of ParamChecksum.
	ParamChecksumAlgorithm = "checksum_algorithm"

	// DefaultTeam is the tenant label used when ParamTeam is absent.
	DefaultTeam = "ats"
)

// ResolveSource is a logical reference to content that must be materialized
// to local disk before use.
type ResolveSource struct {
	// Path is the artifact reference: a local path, URI, or content address.
	Path string

	// Parameters tune how the path is resolved.
	Parameters map[string]string

	// TargetDir is where resolved files are materialized. It is deliberately
	// excluded from the dedup key: concurrent requests for the same
	// (path, parameters) share one resolution regardless of destination.
	TargetDir string
}

// Key returns the canonical dedup key for this source: the path plus the
// sorted parameters, excluding TargetDir.
func (s ResolveSource) Key() string {
	if len(s.Parameters) == 0 {
		return s.Path
	}
	keys := make([]string, 0, len(s.Parameters))
	for k := range s.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(s.Path)
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.Parameters[k])
	}
	return b.String()
}

// Param returns the named parameter or "" when absent.
func (s ResolveSource) Param(name string) string {
	return s.Parameters[name]
}

// UsePersistentCache reports whether this source opts into the shared disk cache.
func (s ResolveSource) UsePersistentCache() bool {
	return s.Parameters[ParamUsePersistentCache] == "true"
}

// Team returns the tenant label for persistent cache scoping.
func (s ResolveSource) Team() string {
	if team := s.Parameters[ParamTeam]; team != "" {
		return team
	}
	return DefaultTeam
}

// String implements fmt.Stringer for log output.
func (s ResolveSource) String() string {
	return fmt.Sprintf("ResolveSource{path=%s, params=%d, target=%s}", s.Path, len(s.Parameters), s.TargetDir)
}

// ResolvedFile is one materialized file of a resolution.
type ResolvedFile struct {
	// Path is the local path of the materialized file.
	Path string

	// Checksum is the integrity checksum of the file content, if known.
	Checksum *Checksum
}

// ResolveResult is the immutable output of one successful resolution.
type ResolveResult struct {
	// Files are the materialized files, in resolution order.
	Files []ResolvedFile

	// Metadata carries loader-specific properties of the resolution.
	Metadata map[string]string

	// Source is the request that produced this result.
	Source ResolveSource
}

// Paths returns the local paths of all resolved files.
func (r ResolveResult) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}
