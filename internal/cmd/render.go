package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"reposnap/pkg/config"
	"reposnap/pkg/github"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	openColor    = color.New(color.FgGreen)
	closedColor  = color.New(color.FgMagenta)
	mutedColor   = color.New(color.Faint)
)

func isKnownFormat(format string) bool {
	switch format {
	case config.FormatJSON, config.FormatYAML, config.FormatText:
		return true
	default:
		return false
	}
}

func renderSnapshot(w io.Writer, info *github.RepositoryInfo, format string) error {
	switch format {
	case config.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(info); err != nil {
			return err
		}
		return encoder.Close()
	case config.FormatText:
		return renderText(w, info)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func renderText(w io.Writer, info *github.RepositoryInfo) error {
	headingColor.Fprintf(w, "📦 %s\n", info.Name)
	if info.Description != "" {
		fmt.Fprintf(w, "%s\n", info.Description)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "URL:\t%s\n", info.URL)
	if info.Homepage != "" {
		fmt.Fprintf(tw, "Homepage:\t%s\n", info.Homepage)
	}
	fmt.Fprintf(tw, "Stars:\t%d\n", info.StargazersCount)
	fmt.Fprintf(tw, "Forks:\t%d\n", info.ForksCount)
	fmt.Fprintf(tw, "Watchers:\t%d\n", info.WatchersCount)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	issues := info.Issues
	if !issues.Exist {
		mutedColor.Fprintln(w, "Issues are disabled for this repository")
		return nil
	}

	headingColor.Fprintf(w, "Issues (%d fetched, %d open, %d closed)\n", issues.Count, issues.Opened, issues.Closed)
	if len(issues.Items) == 0 {
		mutedColor.Fprintln(w, "No issues returned")
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, issue := range issues.Items {
		state := openColor.Sprint(issue.State)
		if issue.State == "closed" {
			state = closedColor.Sprint(issue.State)
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n", issue.ID, state, issue.Title, issueDetails(issue))
	}
	return tw.Flush()
}

func issueDetails(issue github.RepositoryIssue) string {
	var parts []string

	if len(issue.Labels) > 0 {
		names := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			names = append(names, label.Name)
		}
		parts = append(parts, "["+strings.Join(names, ", ")+"]")
	}

	if len(issue.Assignees) > 0 {
		logins := make([]string, 0, len(issue.Assignees))
		for _, user := range issue.Assignees {
			logins = append(logins, "@"+user.Name)
		}
		parts = append(parts, strings.Join(logins, " "))
	}

	return strings.Join(parts, " ")
}
