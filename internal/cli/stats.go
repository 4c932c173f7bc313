package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/momentum-app/momentum/internal/domain"
)

func init() {
	rootCmd.AddCommand(statsCmd, reviewCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP, level and execution score",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		var st domain.Stats
		if err := c.get("/api/stats", &st); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Level:\t%d (%.0f%%, %d XP to next)\n", st.Level, st.LevelProgressPct, st.XPToNextLevel)
		fmt.Fprintf(w, "XP:\t%d\n", st.XP)
		fmt.Fprintf(w, "Execution score:\t%d%% (%d/%d tasks)\n", st.ExecutionScore, st.CompletedTasks, st.TotalTasks)
		fmt.Fprintf(w, "Energy:\t%s\n", st.EnergyLevel)
		return w.Flush()
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Ask the AI coach for a daily review",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		var resp struct {
			Review string `json:"review"`
		}
		if err := c.get("/api/review", &resp); err != nil {
			return err
		}
		fmt.Println(resp.Review)
		return nil
	},
}
