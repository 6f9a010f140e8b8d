// Package github assembles point-in-time repository snapshots from a
// GitHub-style REST API.
//
// The package includes:
// - Client for fetching repository and issue resources by absolute URL
// - Assembler for turning a repository endpoint into a RepositoryInfo
// - Boundary mappers that reject payloads missing required fields
// - CachingAssembler for short-lived, deduplicated snapshot reuse
package github
