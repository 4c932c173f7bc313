package cli

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentum-app/momentum/internal/domain"
)

func init() {
	tasksCmd.Flags().StringVar(&tasksQuadrant, "quadrant", "", "Only list tasks in this quadrant (do, schedule)")

	addCmd.Flags().IntVarP(&addPriority, "priority", "p", 3, "Priority 1-5")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", string(domain.CategoryWork), "work, personal, health or learning")
	addCmd.Flags().IntVarP(&addDuration, "duration", "d", 30, "Estimated minutes")
	addCmd.Flags().DurationVar(&addDue, "due", 0, "Deadline from now, e.g. 2h")
	addCmd.Flags().DurationVar(&addRemind, "remind", 0, "Reminder from now, e.g. 30m")

	rootCmd.AddCommand(tasksCmd, addCmd, toggleCmd)
}

var (
	tasksQuadrant string

	addPriority int
	addCategory string
	addDuration int
	addDue      time.Duration
	addRemind   time.Duration
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"ls"},
	Short:   "List tasks in order",
	RunE:    runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	path := "/api/tasks"
	if tasksQuadrant != "" {
		path += "?quadrant=" + url.QueryEscape(tasksQuadrant)
	}
	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := c.get(path, &resp); err != nil {
		return err
	}

	if len(resp.Tasks) == 0 {
		fmt.Println("No tasks. Run 'momentum add <title>' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tQUADRANT\tDEADLINE\tDONE")
	for _, t := range resp.Tasks {
		done := ""
		if t.Completed {
			done = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(t.ID),
			t.Title,
			t.Priority,
			t.Quadrant,
			t.Deadline.Local().Format("2006-01-02 15:04"),
			done,
		)
	}
	return w.Flush()
}

var addCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a task to the top of the list",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	in := domain.NewTask{
		Title:    args[0],
		Priority: addPriority,
		Category: domain.Category(addCategory),
		Duration: addDuration,
	}
	now := time.Now()
	if addDue > 0 {
		in.Deadline = domain.Some(now.Add(addDue))
	}
	if addRemind > 0 {
		in.Reminder = domain.Some(now.Add(addRemind))
	}
	if err := domain.ValidateNewTask(in); err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	var task domain.Task
	if err := c.post("/api/tasks", in, &task); err != nil {
		return err
	}
	fmt.Printf("Added %s %q (%s)\n", shortID(task.ID), task.Title, task.Quadrant)
	return nil
}

var toggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Toggle a task's completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}
	id, err := resolveTaskID(c, args[0])
	if err != nil {
		return err
	}
	var task domain.Task
	if err := c.post("/api/tasks/"+url.PathEscape(id)+"/toggle", nil, &task); err != nil {
		return err
	}
	state := "open"
	if task.Completed {
		state = "completed"
	}
	fmt.Printf("%q is now %s\n", task.Title, state)
	return nil
}

// resolveTaskID expands a unique ID prefix, as printed by `tasks`.
func resolveTaskID(c *apiClient, prefix string) (string, error) {
	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := c.get("/api/tasks", &resp); err != nil {
		return "", err
	}
	return matchID(prefix, resp.Tasks)
}

func matchID(prefix string, tasks []domain.Task) (string, error) {
	var match string
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if len(prefix) > 0 && len(t.ID) >= len(prefix) && t.ID[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("task ID %q is ambiguous", prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrTaskNotFound, prefix)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
