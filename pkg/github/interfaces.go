package github

import (
	"context"

	"github.com/google/go-github/v66/github"
)

// Fetcher defines the two reads a snapshot needs
type Fetcher interface {
	// GetRepositoryByURL fetches the repository resource at an absolute URL
	GetRepositoryByURL(ctx context.Context, endpoint string) (*github.Repository, error)

	// ListIssuesByURL fetches one page of the issues collection at an absolute URL
	ListIssuesByURL(ctx context.Context, endpoint string) ([]*github.Issue, error)
}

// SnapshotAssembler builds a RepositoryInfo from a repository endpoint
type SnapshotAssembler interface {
	Assemble(ctx context.Context, endpoint string) (*RepositoryInfo, error)
}
