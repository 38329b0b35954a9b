package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/output"
	"github.com/gitgate/gitgate/internal/pipeline"
	"github.com/gitgate/gitgate/internal/policy"
	"github.com/gitgate/gitgate/internal/validate"
)

var runQuiet bool

var runCmd = &cobra.Command{
	Use:   "run <event> [event args]",
	Short: "Run the policy pipeline for a hook event",
	Long: `Run the policy pipeline for one git hook event.

Event arguments mirror what git passes to the hook:

  gitgate run pre-commit
  gitgate run commit-msg <message-file>
  gitgate run pre-push <remote-name> <remote-url>   (ref updates on stdin)
  gitgate run post-checkout <prev-head> <new-head> <flag>

Exits 0 when the checks pass (with or without warnings) and 1 when a
required check fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd, args)
	},
}

func init() {
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress the report when every check passes")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	event, err := validate.ParseEvent(args[0])
	if err != nil {
		return err
	}

	req, err := buildRequest(cmd, event, args[1:])
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	client := git.NewClient()
	repoRoot, err := client.RepoRoot(cwd)
	if err != nil {
		return fmt.Errorf("locate repository: %w", err)
	}

	overrides, ticketPattern, err := loadPolicyConfig(repoRoot)
	if err != nil {
		return err
	}

	specs, err := pipeline.DefaultSpecs(event, pipeline.Config{TicketPattern: ticketPattern})
	if err != nil {
		return err
	}

	orch := pipeline.New(client, repoRoot, policy.NewResolver(overrides), pipeline.Options{
		Workers: viper.GetInt("run.workers"),
	})
	decision := orch.Run(cmd.Context(), event, req, specs)

	renderDecision(event, decision)

	if decision.ExitCode != 0 {
		return errChecksFailed
	}
	return nil
}

// buildRequest validates the hook's positional arguments for the event and
// packages them up. Extra arguments are ignored, missing ones are errors.
func buildRequest(cmd *cobra.Command, event validate.Event, args []string) (pipeline.Request, error) {
	var req pipeline.Request

	switch event {
	case validate.CommitMsg:
		if len(args) < 1 {
			return req, fmt.Errorf("commit-msg needs the commit message file path")
		}
		req.MessageFile = args[0]

	case validate.PrePush:
		if len(args) > 0 {
			req.Remote = args[0]
		}
		if len(args) > 1 {
			req.RemoteURL = args[1]
		}
		req.RefUpdates = cmd.InOrStdin()

	case validate.PostCheckout:
		if len(args) < 3 {
			return req, fmt.Errorf("post-checkout needs <prev-head> <new-head> <flag>")
		}
		req.PreviousHead = args[0]
		req.NewHead = args[1]
		req.BranchSwitch = args[2] == "1"
	}

	return req, nil
}

func renderDecision(event validate.Event, d pipeline.Decision) {
	if runQuiet && d.Status == pipeline.Pass {
		return
	}

	fmt.Fprintf(ui.Out, "\n%s %s", output.Cyan("gitgate"), event)
	if d.Branch != "" {
		fmt.Fprintf(ui.Out, "  %s (%s)", d.Branch, d.Classification)
	}
	fmt.Fprintln(ui.Out)
	if d.RunID != "" {
		ui.VerboseLog("run %s", d.RunID)
	}
	for _, o := range d.Outcomes {
		fmt.Fprintf(ui.Out, "  %s %-22s %s\n", output.StatusGlyph(string(o.Status)), o.Validator, o.Message)
	}

	passed, warned, failed := d.Counts()
	fmt.Fprintf(ui.Out, "\n  %d passed, %d warnings, %d failed (%s)\n",
		passed, warned, failed, output.DecisionColor(string(d.Status)))
}
