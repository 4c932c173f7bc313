package cli

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/momentum-app/momentum/internal/domain"
)

func init() {
	habitsCmd.AddCommand(habitAddCmd, habitDoneCmd)
	rootCmd.AddCommand(habitsCmd)
}

var habitsCmd = &cobra.Command{
	Use:   "habits",
	Short: "List habits and their streaks",
	RunE:  runHabits,
}

func runHabits(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}
	var resp struct {
		Habits []domain.Habit `json:"habits"`
		Today  domain.Date    `json:"today"`
	}
	if err := c.get("/api/habits", &resp); err != nil {
		return err
	}

	if len(resp.Habits) == 0 {
		fmt.Println("No habits. Run 'momentum habits add <name>' to start one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTREAK\tLAST\tTODAY")
	for _, h := range resp.Habits {
		today := ""
		if h.DoneOn(resp.Today) {
			today = "✓"
		}
		last := h.LastCompleted.String()
		if last == "" {
			last = "never"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", shortID(h.ID), h.Name, h.Streak, last, today)
	}
	return w.Flush()
}

var habitAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Start tracking a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		var h domain.Habit
		if err := c.post("/api/habits", map[string]string{"name": args[0]}, &h); err != nil {
			return err
		}
		fmt.Printf("Tracking %s %q\n", shortID(h.ID), h.Name)
		return nil
	},
}

var habitDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Mark a habit completed today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		var list struct {
			Habits []domain.Habit `json:"habits"`
		}
		if err := c.get("/api/habits", &list); err != nil {
			return err
		}
		id := ""
		for _, h := range list.Habits {
			if h.ID == args[0] || shortID(h.ID) == args[0] {
				id = h.ID
				break
			}
		}
		if id == "" {
			return fmt.Errorf("%w: %s", domain.ErrHabitNotFound, args[0])
		}

		var resp struct {
			Completed bool         `json:"completed"`
			Habit     domain.Habit `json:"habit"`
		}
		if err := c.post("/api/habits/"+url.PathEscape(id)+"/toggle", nil, &resp); err != nil {
			return err
		}
		if !resp.Completed {
			fmt.Printf("%q was already done today (streak %d)\n", resp.Habit.Name, resp.Habit.Streak)
			return nil
		}
		fmt.Printf("%q done, streak %d\n", resp.Habit.Name, resp.Habit.Streak)
		return nil
	},
}
