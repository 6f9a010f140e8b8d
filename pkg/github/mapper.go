package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

const (
	resourceRepository = "repository"
	resourceIssues     = "issues"
)

// required dereferences a payload field, failing when the field was absent or null
func required[T any](value *T, resource, field string) (T, error) {
	if value == nil {
		var zero T
		return zero, newMissingFieldError(resource, field)
	}
	return *value, nil
}

// MapRepository assembles the snapshot from a decoded repository resource and
// its issues collection. Issues keep their source order.
func MapRepository(repo *github.Repository, issues []*github.Issue, policy ClosedCountPolicy) (*RepositoryInfo, error) {
	if repo == nil {
		return nil, NewGitHubError(ErrorTypeDecode, "repository payload is empty", nil).withResource(resourceRepository)
	}
	if !policy.Valid() {
		return nil, NewGitHubError(ErrorTypeValidation, fmt.Sprintf("unknown closed count policy %q", policy), nil)
	}

	var errs error
	collect := func(err error) {
		if errs == nil && err != nil {
			errs = err
		}
	}

	name, err := required(repo.Name, resourceRepository, "name")
	collect(err)
	htmlURL, err := required(repo.HTMLURL, resourceRepository, "html_url")
	collect(err)
	stars, err := required(repo.StargazersCount, resourceRepository, "stargazers_count")
	collect(err)
	forks, err := required(repo.ForksCount, resourceRepository, "forks_count")
	collect(err)
	watchers, err := required(repo.WatchersCount, resourceRepository, "watchers_count")
	collect(err)
	hasIssues, err := required(repo.HasIssues, resourceRepository, "has_issues")
	collect(err)
	issuesURL, err := required(repo.IssuesURL, resourceRepository, "issues_url")
	collect(err)
	opened, err := required(repo.OpenIssuesCount, resourceRepository, "open_issues_count")
	collect(err)
	if errs != nil {
		return nil, errs
	}

	items := make([]RepositoryIssue, 0, len(issues))
	for i, issue := range issues {
		item, err := MapIssue(issue, fmt.Sprintf("issues[%d]", i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	count := len(items)

	return &RepositoryInfo{
		Name:            name,
		Description:     repo.GetDescription(),
		Homepage:        repo.GetHomepage(),
		URL:             htmlURL,
		StargazersCount: stars,
		ForksCount:      forks,
		WatchersCount:   watchers,
		Issues: IssuesSnapshot{
			Exist:  hasIssues,
			URL:    issuesURL,
			Count:  count,
			Opened: opened,
			Closed: closedCount(policy, items, opened),
			Items:  items,
		},
	}, nil
}

func closedCount(policy ClosedCountPolicy, items []RepositoryIssue, opened int) int {
	if policy == ClosedByState {
		closed := 0
		for _, item := range items {
			if item.State == "closed" {
				closed++
			}
		}
		return closed
	}
	return len(items) - opened
}

// MapIssue reshapes a single issue. path locates the issue in the payload for
// error reporting, e.g. "issues[3]".
func MapIssue(issue *github.Issue, path string) (RepositoryIssue, error) {
	if issue == nil {
		return RepositoryIssue{}, newMissingFieldError(resourceIssues, path)
	}

	number, err := required(issue.Number, resourceIssues, path+".number")
	if err != nil {
		return RepositoryIssue{}, err
	}
	title, err := required(issue.Title, resourceIssues, path+".title")
	if err != nil {
		return RepositoryIssue{}, err
	}
	htmlURL, err := required(issue.HTMLURL, resourceIssues, path+".html_url")
	if err != nil {
		return RepositoryIssue{}, err
	}
	state, err := required(issue.State, resourceIssues, path+".state")
	if err != nil {
		return RepositoryIssue{}, err
	}

	labels := make([]IssueLabel, 0, len(issue.Labels))
	for i, label := range issue.Labels {
		mapped, err := MapLabel(label, fmt.Sprintf("%s.labels[%d]", path, i))
		if err != nil {
			return RepositoryIssue{}, err
		}
		labels = append(labels, mapped)
	}

	assignees := make([]GithubUser, 0, len(issue.Assignees))
	for i, user := range issue.Assignees {
		mapped, err := MapUser(user, fmt.Sprintf("%s.assignees[%d]", path, i))
		if err != nil {
			return RepositoryIssue{}, err
		}
		assignees = append(assignees, mapped)
	}

	return RepositoryIssue{
		ID:        number,
		Title:     title,
		Body:      issue.GetBody(),
		URL:       htmlURL,
		State:     state,
		Labels:    labels,
		Assignees: assignees,
	}, nil
}

// MapLabel reshapes an issue label
func MapLabel(label *github.Label, path string) (IssueLabel, error) {
	if label == nil {
		return IssueLabel{}, newMissingFieldError(resourceIssues, path)
	}

	name, err := required(label.Name, resourceIssues, path+".name")
	if err != nil {
		return IssueLabel{}, err
	}
	labelURL, err := required(label.URL, resourceIssues, path+".url")
	if err != nil {
		return IssueLabel{}, err
	}

	return IssueLabel{
		Name:        name,
		URL:         labelURL,
		Description: label.GetDescription(),
	}, nil
}

// MapUser reshapes an assignee
func MapUser(user *github.User, path string) (GithubUser, error) {
	if user == nil {
		return GithubUser{}, newMissingFieldError(resourceIssues, path)
	}

	login, err := required(user.Login, resourceIssues, path+".login")
	if err != nil {
		return GithubUser{}, err
	}
	htmlURL, err := required(user.HTMLURL, resourceIssues, path+".html_url")
	if err != nil {
		return GithubUser{}, err
	}
	avatar, err := required(user.AvatarURL, resourceIssues, path+".avatar_url")
	if err != nil {
		return GithubUser{}, err
	}

	return GithubUser{
		Name:   login,
		URL:    htmlURL,
		Avatar: avatar,
	}, nil
}

// IssuesEndpoint derives the issues collection URL from a repository
// resource's API url by appending the "issues" path segment. Trailing
// slashes are tolerated and query parameters are kept.
func IssuesEndpoint(repositoryURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(repositoryURL))
	if err != nil {
		return "", &GitHubError{
			Type:     ErrorTypeDecode,
			Message:  fmt.Sprintf("repository url is not a valid URL: %v", err),
			Cause:    err,
			Resource: resourceRepository,
			Field:    "url",
		}
	}
	if !u.IsAbs() || u.Host == "" {
		return "", &GitHubError{
			Type:     ErrorTypeDecode,
			Message:  fmt.Sprintf("repository url %q is not absolute", repositoryURL),
			Resource: resourceRepository,
			Field:    "url",
		}
	}

	return u.JoinPath("issues").String(), nil
}
