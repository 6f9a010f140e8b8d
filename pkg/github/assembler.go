package github

import (
	"context"
	"fmt"
)

// Assembler turns a repository endpoint into a RepositoryInfo snapshot.
// The repository and issues reads are strictly sequential because the
// issues URL comes from the repository resource.
type Assembler struct {
	fetcher Fetcher
	policy  ClosedCountPolicy
}

// NewAssembler creates an assembler. An empty policy means ClosedBySubtraction.
func NewAssembler(fetcher Fetcher, policy ClosedCountPolicy) *Assembler {
	if policy == "" {
		policy = ClosedBySubtraction
	}
	return &Assembler{
		fetcher: fetcher,
		policy:  policy,
	}
}

// Assemble fetches the repository at endpoint, then the issues collection
// under the resource's url, and maps both into a snapshot.
func (a *Assembler) Assemble(ctx context.Context, endpoint string) (*RepositoryInfo, error) {
	return a.assemble(ctx, endpoint, "")
}

// AssembleWithIssues is Assemble with a known issues endpoint, skipping the
// derivation from the repository resource.
func (a *Assembler) AssembleWithIssues(ctx context.Context, endpoint, issuesEndpoint string) (*RepositoryInfo, error) {
	if err := ValidateEndpoint(issuesEndpoint); err != nil {
		return nil, &GitHubError{
			Type:     ErrorTypeValidation,
			Message:  err.Error(),
			Cause:    err,
			Resource: fmt.Sprintf("issues %s", issuesEndpoint),
		}
	}
	return a.assemble(ctx, endpoint, issuesEndpoint)
}

func (a *Assembler) assemble(ctx context.Context, endpoint, issuesEndpoint string) (*RepositoryInfo, error) {
	if !a.policy.Valid() {
		return nil, NewGitHubError(ErrorTypeValidation, fmt.Sprintf("unknown closed count policy %q", a.policy), nil)
	}

	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, &GitHubError{
			Type:     ErrorTypeValidation,
			Message:  err.Error(),
			Cause:    err,
			Resource: fmt.Sprintf("repository %s", endpoint),
		}
	}

	repo, err := a.fetcher.GetRepositoryByURL(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, NewGitHubError(ErrorTypeDecode, "repository payload is empty", nil).withResource(fmt.Sprintf("repository %s", endpoint))
	}

	if issuesEndpoint == "" {
		repoURL, err := required(repo.URL, resourceRepository, "url")
		if err != nil {
			return nil, err
		}
		issuesEndpoint, err = IssuesEndpoint(repoURL)
		if err != nil {
			return nil, err
		}
	}

	issues, err := a.fetcher.ListIssuesByURL(ctx, issuesEndpoint)
	if err != nil {
		return nil, err
	}

	return MapRepository(repo, issues, a.policy)
}
