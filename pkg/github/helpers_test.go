package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// mockRoute is a canned API response. A string body is written verbatim,
// anything else is JSON encoded.
type mockRoute struct {
	status int
	body   interface{}
}

// mockAPIServer serves routes keyed by "METHOD /path". Routes may be added
// after the server starts as long as no request is in flight.
type mockAPIServer struct {
	*httptest.Server
	routes   map[string]mockRoute
	requests atomic.Int64
}

func newMockAPIServer(t *testing.T) *mockAPIServer {
	t.Helper()

	m := &mockAPIServer{routes: map[string]mockRoute{}}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)

		key := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		route, exists := m.routes[key]
		if !exists {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
			return
		}

		status := route.status
		if status == 0 {
			status = http.StatusOK
		}

		if raw, ok := route.body.(string); ok {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(raw))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(route.body)
	}))
	t.Cleanup(m.Server.Close)

	return m
}

func (m *mockAPIServer) handle(path string, body interface{}) {
	m.routes["GET "+path] = mockRoute{status: http.StatusOK, body: body}
}

func (m *mockAPIServer) handleStatus(path string, status int, body interface{}) {
	m.routes["GET "+path] = mockRoute{status: status, body: body}
}

func repositoryPayload(apiURL string, openIssues int) map[string]interface{} {
	return map[string]interface{}{
		"url":               apiURL,
		"name":              "x",
		"description":       "d",
		"forks_count":       3,
		"homepage":          "h",
		"stargazers_count":  10,
		"html_url":          "https://github.com/x",
		"watchers_count":    5,
		"has_issues":        true,
		"issues_url":        apiURL + "/issues{/number}",
		"open_issues_count": openIssues,
	}
}

func issuePayload(number int, state string, labels, assignees int) map[string]interface{} {
	labelList := make([]interface{}, 0, labels)
	for i := 0; i < labels; i++ {
		labelList = append(labelList, map[string]interface{}{
			"name":        fmt.Sprintf("label-%d", i),
			"url":         fmt.Sprintf("https://api.example.com/labels/label-%d", i),
			"description": nil,
		})
	}

	assigneeList := make([]interface{}, 0, assignees)
	for i := 0; i < assignees; i++ {
		assigneeList = append(assigneeList, map[string]interface{}{
			"login":      fmt.Sprintf("user%d", i),
			"html_url":   fmt.Sprintf("https://github.com/user%d", i),
			"avatar_url": fmt.Sprintf("https://avatars.example.com/u/%d", i),
		})
	}

	return map[string]interface{}{
		"number":    number,
		"title":     fmt.Sprintf("issue %d", number),
		"html_url":  fmt.Sprintf("https://github.com/x/issues/%d", number),
		"state":     state,
		"body":      fmt.Sprintf("body %d", number),
		"labels":    labelList,
		"assignees": assigneeList,
	}
}

func newTestAssembler(policy ClosedCountPolicy) *Assembler {
	return NewAssembler(NewClient(WithRetryConfig(&RetryConfig{MaxRetries: 0})), policy)
}
