package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
)

// fakeAPI serves one repository, owner "o" name "r", with two issues
type fakeAPI struct {
	*httptest.Server
	requests   atomic.Int64
	hasIssues  bool
	openIssues int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{hasIssues: true, openIssues: 1}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		writeFakeJSON(w, map[string]interface{}{
			"url":               f.URL + "/repos/o/r",
			"name":              "r",
			"description":       "A repository",
			"homepage":          nil,
			"html_url":          "https://github.com/o/r",
			"stargazers_count":  42,
			"forks_count":       7,
			"watchers_count":    42,
			"has_issues":        f.hasIssues,
			"issues_url":        f.URL + "/repos/o/r/issues{/number}",
			"open_issues_count": f.openIssues,
		})
	})
	mux.HandleFunc("GET /repos/o/r/issues", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		writeFakeJSON(w, []interface{}{
			map[string]interface{}{
				"number":   2,
				"title":    "Crash on start",
				"html_url": "https://github.com/o/r/issues/2",
				"state":    "open",
				"body":     "Stack trace attached",
				"labels": []interface{}{
					map[string]interface{}{"name": "bug", "url": f.URL + "/labels/bug", "description": "Something broken"},
					map[string]interface{}{"name": "p1", "url": f.URL + "/labels/p1", "description": nil},
				},
				"assignees": []interface{}{
					map[string]interface{}{"login": "octocat", "html_url": "https://github.com/octocat", "avatar_url": "https://avatars.example.com/octocat"},
				},
			},
			map[string]interface{}{
				"number":    1,
				"title":     "Typo in README",
				"html_url":  "https://github.com/o/r/issues/1",
				"state":     "closed",
				"body":      nil,
				"labels":    []interface{}{},
				"assignees": []interface{}{},
			},
		})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)

	return f
}

func writeFakeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeTestConfig writes a configuration file pointing at apiURL
func writeTestConfig(t *testing.T, apiURL string, extra string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("github:\n  api_url: %q\n  timeout: 5s\n%s", apiURL, extra)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// resetFlags restores package level flag state shared across command runs
func resetFlags() {
	configPath = ""
	verbose = false
	appConfig = nil
	snapshotOutput = ""
	snapshotIssuesURL = ""
	snapshotClosedCount = ""
	snapshotTimeout = 0
	initForce = false
	serveAddr = ":8080"
}

// executeCommand runs the root command with args and returns its stdout
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	color.NoColor = true

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return out.String(), err
}
