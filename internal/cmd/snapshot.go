package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reposnap/pkg/config"
	"reposnap/pkg/github"
)

var (
	snapshotOutput      string
	snapshotIssuesURL   string
	snapshotClosedCount string
	snapshotTimeout     time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <repository>",
	Short: "Fetch and render a repository snapshot",
	Long: `Fetch a repository resource and its issues, then render the assembled snapshot.

The repository argument is either an absolute API URL
(e.g. https://api.github.com/repos/owner/name) or an owner/name reference
resolved against github.api_url from the configuration.

The issues collection is read from the "issues" path under the repository
resource's url field unless --issues-url is given. Only the first page of
issues returned by the API is included.

CLOSED COUNT:
  subtract  closed = count - opened (may be negative: open_issues_count can
            include pull requests or differ from the fetched page)
  state     closed = number of fetched issues whose state is "closed"

Examples:
  reposnap snapshot octocat/hello-world
  reposnap snapshot https://api.github.com/repos/octocat/hello-world --output yaml
  reposnap snapshot octocat/hello-world --closed-count state --output text`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Output format: json, yaml or text (default from config)")
	snapshotCmd.Flags().StringVar(&snapshotIssuesURL, "issues-url", "", "Explicit issues collection URL instead of deriving it from the repository resource")
	snapshotCmd.Flags().StringVar(&snapshotClosedCount, "closed-count", "", "Closed count policy: subtract or state (default from config)")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 0, "Per-request timeout (default from config)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	format := cfg.Output.Format
	if snapshotOutput != "" {
		format = snapshotOutput
	}
	if !isKnownFormat(format) {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	policy := github.ClosedCountPolicy(cfg.GitHub.ClosedCount)
	if snapshotClosedCount != "" {
		policy = github.ClosedCountPolicy(snapshotClosedCount)
	}
	if !policy.Valid() {
		return fmt.Errorf("unsupported closed count policy: %s", policy)
	}

	timeout := cfg.GitHub.Timeout
	if snapshotTimeout > 0 {
		timeout = snapshotTimeout
	}

	endpoint, err := github.ResolveEndpoint(cfg.GitHub.APIURL, args[0])
	if err != nil {
		return fmt.Errorf("invalid repository: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	info, err := assembleSnapshot(ctx, cfg, endpoint, policy, timeout)
	if err != nil {
		return fmt.Errorf("failed to assemble snapshot: %w", err)
	}

	logger.WithFields(logger.Fields{
		"repository": info.Name,
		"issues":     info.Issues.Count,
	}).Info("Snapshot assembled")

	return renderSnapshot(cmd.OutOrStdout(), info, format)
}

func assembleSnapshot(ctx context.Context, cfg *config.Config, endpoint string, policy github.ClosedCountPolicy, timeout time.Duration) (*github.RepositoryInfo, error) {
	assembler := newAssembler(cfg, policy, timeout)

	if snapshotIssuesURL != "" {
		return assembler.AssembleWithIssues(ctx, endpoint, snapshotIssuesURL)
	}
	return assembler.Assemble(ctx, endpoint)
}

func newAssembler(cfg *config.Config, policy github.ClosedCountPolicy, timeout time.Duration) *github.Assembler {
	client := github.NewClient(
		github.WithTimeout(timeout),
		github.WithRetryConfig(cfg.RetryConfig()),
		github.WithUserAgent(cfg.GitHub.UserAgent),
		github.WithLogger(logger.StandardLogger()),
	)
	return github.NewAssembler(client, policy)
}
