package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"reposnap/pkg/github"
)

func TestSnapshotCommand_JSON(t *testing.T) {
	api := newFakeAPI(t)
	path := writeTestConfig(t, api.URL+"/", "")

	output, err := executeCommand(t, "", "snapshot", "o/r", "--config", path)
	require.NoError(t, err)

	var info github.RepositoryInfo
	require.NoError(t, json.Unmarshal([]byte(output), &info))

	assert.Equal(t, "r", info.Name)
	assert.Equal(t, "A repository", info.Description)
	assert.Equal(t, "", info.Homepage)
	assert.Equal(t, "https://github.com/o/r", info.URL)
	assert.Equal(t, 42, info.StargazersCount)
	assert.Equal(t, 7, info.ForksCount)
	assert.True(t, info.Issues.Exist)
	assert.Equal(t, api.URL+"/repos/o/r/issues{/number}", info.Issues.URL)
	assert.Equal(t, 2, info.Issues.Count)
	assert.Equal(t, 1, info.Issues.Opened)
	assert.Equal(t, 1, info.Issues.Closed)
	require.Len(t, info.Issues.Items, 2)
	assert.Equal(t, 2, info.Issues.Items[0].ID)
	assert.Equal(t, []string{"bug", "p1"}, []string{info.Issues.Items[0].Labels[0].Name, info.Issues.Items[0].Labels[1].Name})
	assert.Equal(t, "octocat", info.Issues.Items[0].Assignees[0].Name)
	assert.Equal(t, "", info.Issues.Items[1].Body)

	assert.Equal(t, int64(2), api.requests.Load())
}

func TestSnapshotCommand_AbsoluteURL(t *testing.T) {
	api := newFakeAPI(t)
	path := writeTestConfig(t, "https://unused.example.com/", "")

	output, err := executeCommand(t, "", "snapshot", api.URL+"/repos/o/r", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, output, `"name": "r"`)
}

func TestSnapshotCommand_ClosedCountPolicy(t *testing.T) {
	api := newFakeAPI(t)
	api.openIssues = 5
	path := writeTestConfig(t, api.URL+"/", "")

	output, err := executeCommand(t, "", "snapshot", "o/r", "--config", path)
	require.NoError(t, err)
	var subtract github.RepositoryInfo
	require.NoError(t, json.Unmarshal([]byte(output), &subtract))
	assert.Equal(t, -3, subtract.Issues.Closed)

	output, err = executeCommand(t, "", "snapshot", "o/r", "--config", path, "--closed-count", "state")
	require.NoError(t, err)
	var byState github.RepositoryInfo
	require.NoError(t, json.Unmarshal([]byte(output), &byState))
	assert.Equal(t, 1, byState.Issues.Closed)
}

func TestSnapshotCommand_YAML(t *testing.T) {
	api := newFakeAPI(t)
	path := writeTestConfig(t, api.URL+"/", "output:\n  format: yaml\n")

	output, err := executeCommand(t, "", "snapshot", "o/r", "--config", path)
	require.NoError(t, err)

	var info github.RepositoryInfo
	require.NoError(t, yaml.Unmarshal([]byte(output), &info))
	assert.Equal(t, "r", info.Name)
	assert.Equal(t, 2, info.Issues.Count)
	assert.Contains(t, output, "stargazersCount: 42")
}

func TestSnapshotCommand_Text(t *testing.T) {
	api := newFakeAPI(t)
	path := writeTestConfig(t, api.URL+"/", "")

	output, err := executeCommand(t, "", "snapshot", "o/r", "--config", path, "-o", "text")
	require.NoError(t, err)

	assert.Contains(t, output, "r\nA repository")
	assert.Contains(t, output, "Issues (2 fetched, 1 open, 1 closed)")
	assert.Contains(t, output, "#2")
	assert.Contains(t, output, "[bug, p1] @octocat")
	assert.Contains(t, output, "Typo in README")
}

func TestSnapshotCommand_ExplicitIssuesURL(t *testing.T) {
	api := newFakeAPI(t)
	path := writeTestConfig(t, api.URL+"/", "")

	_, err := executeCommand(t, "", "snapshot", "o/r", "--config", path, "--issues-url", api.URL+"/elsewhere")
	require.Error(t, err)

	assert.True(t, github.IsErrorType(err, github.ErrorTypeNotFound), "got %v", err)
	assert.Contains(t, err.Error(), "/elsewhere")
}

func TestSnapshotCommand_Errors(t *testing.T) {
	api := newFakeAPI(t)
	path := writeTestConfig(t, api.URL+"/", "")

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{
			name:     "missing repository argument",
			args:     []string{"snapshot", "--config", path},
			contains: "accepts 1 arg",
		},
		{
			name:     "bad reference",
			args:     []string{"snapshot", "not a repo", "--config", path},
			contains: "invalid repository",
		},
		{
			name:     "unknown format",
			args:     []string{"snapshot", "o/r", "--config", path, "-o", "xml"},
			contains: "unsupported output format",
		},
		{
			name:     "unknown policy",
			args:     []string{"snapshot", "o/r", "--config", path, "--closed-count", "guess"},
			contains: "unsupported closed count policy",
		},
		{
			name:     "repository not found",
			args:     []string{"snapshot", "o/missing", "--config", path},
			contains: "Repository not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, "", tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.contains), "got %v", err)
		})
	}
}
