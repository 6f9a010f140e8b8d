package github

// RepositoryInfo is a point-in-time snapshot of a repository and its issues
type RepositoryInfo struct {
	Name            string         `json:"name" yaml:"name"`
	Description     string         `json:"description" yaml:"description"`
	Homepage        string         `json:"homepage" yaml:"homepage"`
	URL             string         `json:"url" yaml:"url"`
	StargazersCount int            `json:"stargazersCount" yaml:"stargazersCount"`
	ForksCount      int            `json:"forksCount" yaml:"forksCount"`
	WatchersCount   int            `json:"watchersCount" yaml:"watchersCount"`
	Issues          IssuesSnapshot `json:"issues" yaml:"issues"`
}

// IssuesSnapshot summarizes the issues returned for a repository
type IssuesSnapshot struct {
	Exist  bool   `json:"exist" yaml:"exist"`
	URL    string `json:"url" yaml:"url"`
	Count  int    `json:"count" yaml:"count"`
	Opened int    `json:"opened" yaml:"opened"`
	// Closed is derived, see ClosedCountPolicy
	Closed int               `json:"closed" yaml:"closed"`
	Items  []RepositoryIssue `json:"items" yaml:"items"`
}

// RepositoryIssue represents a single issue in the snapshot
type RepositoryIssue struct {
	ID        int          `json:"id" yaml:"id"`
	Title     string       `json:"title" yaml:"title"`
	Body      string       `json:"body" yaml:"body"`
	URL       string       `json:"url" yaml:"url"`
	State     string       `json:"state" yaml:"state"`
	Labels    []IssueLabel `json:"labels" yaml:"labels"`
	Assignees []GithubUser `json:"assignees" yaml:"assignees"`
}

// IssueLabel represents a label attached to an issue
type IssueLabel struct {
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

// GithubUser represents an issue assignee
type GithubUser struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url" yaml:"url"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// ClosedCountPolicy selects how IssuesSnapshot.Closed is derived
type ClosedCountPolicy string

const (
	// ClosedBySubtraction computes count - opened. The result can be negative
	// because open_issues_count comes from the repository resource and may
	// include pull requests or reflect a different point in time.
	ClosedBySubtraction ClosedCountPolicy = "subtract"

	// ClosedByState counts fetched issues whose state is "closed"
	ClosedByState ClosedCountPolicy = "state"
)

// Valid reports whether the policy is a known value
func (p ClosedCountPolicy) Valid() bool {
	switch p {
	case ClosedBySubtraction, ClosedByState:
		return true
	default:
		return false
	}
}
