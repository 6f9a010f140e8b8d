package github

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultAPIBaseURL is the REST root used to resolve owner/name references
const DefaultAPIBaseURL = "https://api.github.com/"

var repoRefPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})/[A-Za-z0-9._-]{1,100}$`)

// ValidateEndpoint checks that endpoint is an absolute http(s) URL
func ValidateEndpoint(endpoint string) error {
	var errs ValidationErrors

	if strings.TrimSpace(endpoint) == "" {
		errs.Add("endpoint", "", "repository endpoint URL is required")
		return errs
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		errs.Add("endpoint", endpoint, fmt.Sprintf("not a valid URL: %v", err))
		return errs
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		errs.Add("endpoint", endpoint, "scheme must be http or https")
	}
	if u.Host == "" {
		errs.Add("endpoint", endpoint, "host is required")
	}
	if u.Fragment != "" {
		errs.Add("endpoint", endpoint, "fragments are not allowed")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ResolveEndpoint turns a repository reference into an API endpoint URL.
// Absolute URLs are returned unchanged; "owner/name" is resolved against
// apiBase as repos/owner/name.
func ResolveEndpoint(apiBase, ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	if strings.Contains(ref, "://") {
		if err := ValidateEndpoint(ref); err != nil {
			return "", err
		}
		return ref, nil
	}

	owner, name, _ := strings.Cut(ref, "/")
	// "." and ".." would be collapsed by JoinPath into a different resource
	if !repoRefPattern.MatchString(ref) || name == "." || name == ".." {
		var errs ValidationErrors
		errs.Add("repository", ref, "expected an API URL or an owner/name reference")
		return "", errs
	}

	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}
	if err := ValidateEndpoint(apiBase); err != nil {
		return "", err
	}

	base, _ := url.Parse(apiBase)
	return base.JoinPath("repos", owner, name).String(), nil
}
