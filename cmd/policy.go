package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/output"
	"github.com/gitgate/gitgate/internal/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy [branch]",
	Short: "Show effective branch policies",
	Long: `Show the effective policy table for every branch classification, or the
resolved policy for one branch name.

Effective values include overrides from the global policies file and the
repository's .gitgate.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return policyShowRun(args[0])
		}
		return policyTableRun()
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
}

// policyResolver builds the resolver the same way the run command does,
// except that outside a repository it falls back to global config only.
func policyResolver() (*policy.Resolver, error) {
	repoRoot := ""
	if cwd, err := os.Getwd(); err == nil {
		if root, err := git.NewClient().RepoRoot(cwd); err == nil {
			repoRoot = root
		}
	}

	overrides, _, err := loadPolicyConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	return policy.NewResolver(overrides), nil
}

func policyTableRun() error {
	resolver, err := policyResolver()
	if err != nil {
		return err
	}

	table := ui.Table([]string{"Classification", "Protected", "Review", "Tests", "Conventional", "Ticket", "Direct Push", "Max Size"})
	for _, c := range branch.All {
		pol := resolver.Resolve(c)
		table.Append([]string{
			output.Cyan(string(c)),
			yesNo(branch.IsProtected(c)),
			yesNo(pol.RequireReview),
			yesNo(pol.RequireTests),
			yesNo(pol.RequireConventionalCommits),
			yesNo(pol.RequireTicketReference),
			yesNo(pol.AllowDirectPush),
			strconv.Itoa(pol.MaxChangeSetSize),
		})
	}
	table.Render()
	return nil
}

func policyShowRun(name string) error {
	resolver, err := policyResolver()
	if err != nil {
		return err
	}

	c := branch.Classify(name)
	pol := resolver.Resolve(c)

	fmt.Fprintf(ui.Out, "\n%s\n", output.Cyan(name))
	fmt.Fprintf(ui.Out, "  Classification:       %s\n", c)
	fmt.Fprintf(ui.Out, "  Protected:            %s\n", yesNo(branch.IsProtected(c)))
	fmt.Fprintf(ui.Out, "  Require review:       %s\n", yesNo(pol.RequireReview))
	fmt.Fprintf(ui.Out, "  Require tests:        %s\n", yesNo(pol.RequireTests))
	fmt.Fprintf(ui.Out, "  Conventional commits: %s\n", yesNo(pol.RequireConventionalCommits))
	fmt.Fprintf(ui.Out, "  Ticket reference:     %s\n", yesNo(pol.RequireTicketReference))
	fmt.Fprintf(ui.Out, "  Direct push:          %s\n", yesNo(pol.AllowDirectPush))
	fmt.Fprintf(ui.Out, "  Max change-set size:  %d\n", pol.MaxChangeSetSize)
	return nil
}
