package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/momentum-app/momentum/internal/daemon"
	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/gemini"
	"github.com/momentum-app/momentum/internal/logging"
)

func init() {
	breakdownCmd.Flags().BoolVar(&breakdownTask, "task", false, "Treat the argument as a task ID and attach the steps on the server")
	rootCmd.AddCommand(breakdownCmd)
}

var breakdownTask bool

var breakdownCmd = &cobra.Command{
	Use:   "breakdown TITLE",
	Short: "Split a task into smaller steps with the AI coach",
	Long: `Ask Gemini for up to five actionable steps.

Without --task the title is sent directly and the steps are printed.
With --task the argument names a task on the running server, which
stores the steps as its subtasks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBreakdown,
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	if breakdownTask {
		return breakdownOnServer(args[0])
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	client, err := gemini.New(ctx, gemini.Config{
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		Language: cfg.AI.Language,
		Timeout:  cfg.AI.TimeoutDuration(),
		Endpoint: cfg.AI.Endpoint,
		Logger:   logging.Discard(),
	})
	if errors.Is(err, domain.ErrAIUnavailable) {
		return fmt.Errorf("%w: set GEMINI_API_KEY or ai.api_key in %s", err, daemon.ConfigPath())
	}
	if err != nil {
		return err
	}

	steps := client.Breakdown(ctx, strings.Join(args, " "))
	if len(steps) == 0 {
		fmt.Println("No steps suggested.")
		return nil
	}
	for i, s := range steps {
		fmt.Printf("%d. %s\n", i+1, s)
	}
	return nil
}

func breakdownOnServer(prefix string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}
	id, err := resolveTaskID(c, prefix)
	if err != nil {
		return err
	}
	var resp struct {
		SubTasks []domain.SubTask `json:"sub_tasks"`
	}
	if err := c.post("/api/tasks/"+url.PathEscape(id)+"/breakdown", nil, &resp); err != nil {
		return err
	}
	if len(resp.SubTasks) == 0 {
		fmt.Println("No steps suggested; the task is unchanged.")
		return nil
	}
	for i, st := range resp.SubTasks {
		fmt.Printf("%d. %s\n", i+1, st.Title)
	}
	return nil
}
