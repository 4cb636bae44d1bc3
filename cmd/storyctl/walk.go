package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"
	"story-branches/internal/story"

	"github.com/spf13/cobra"
)

var (
	flagFrom    string
	flagChoices string
)

var walkCmd = &cobra.Command{
	Use:   "walk <storyID>",
	Short: "Walk a story the way a reader would",
	Long: `Walk starts at --from (or the first branch) and follows the choice
indexes given in --choices, printing every state the reader passes through.
Stops early at a dead end or at the end of the story.

Example:
  storyctl walk 4f1c... --choices 0,1,0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		choices, err := parseChoices(flagChoices)
		if err != nil {
			return err
		}
		repo, closeFn, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return runWalk(cmd.Context(), repo, args[0], flagFrom, choices, cmd.OutOrStdout(), flagJSON)
	},
}

func init() {
	walkCmd.Flags().StringVar(&flagFrom, "from", "", "branch id to start from (default: first branch)")
	walkCmd.Flags().StringVar(&flagChoices, "choices", "", "comma-separated choice indexes to follow")
}

func parseChoices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid choice index %q", p)
		}
		out = append(out, idx)
	}
	return out, nil
}

// runWalk печатает одно представление на каждый шаг, включая стартовый.
func runWalk(ctx context.Context, repo interfaces.StoryRepository, storyID, from string, choices []int, out io.Writer, asJSON bool) error {
	loader := story.BranchLoaderFunc(func(ctx context.Context, id string) ([]models.Branch, error) {
		st, err := repo.GetStory(ctx, id)
		if err != nil {
			return nil, err
		}
		return st.Branches, nil
	})
	nav := story.NewNavigator(loader, story.Session{UserID: "storyctl", Mode: story.ModeReading}, nil)
	if err := nav.Start(ctx, storyID, from); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	views := []story.View{nav.View()}
	for _, idx := range choices {
		if nav.State() != story.StatePresenting {
			break
		}
		if _, err := nav.Advance(idx); err != nil {
			return fmt.Errorf("advance %d from %s: %w", idx, currentID(nav), err)
		}
		views = append(views, nav.View())
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	for i, v := range views {
		printView(out, i, v)
	}
	return nil
}

func currentID(nav *story.Navigator) string {
	if b, ok := nav.Current(); ok {
		return b.ID
	}
	return "?"
}

func printView(out io.Writer, step int, v story.View) {
	switch v.State {
	case story.StateDeadEnd:
		fmt.Fprintf(out, "%d. dead end: branch %s does not exist\n", step, v.DeadEndTarget)
		return
	case story.StateStoryEnd:
		fmt.Fprintf(out, "%d. [%s] %s\n   (the end)\n", step, v.Branch.ID, v.Branch.Text)
		return
	}
	fmt.Fprintf(out, "%d. [%s] %s\n", step, v.Branch.ID, v.Branch.Text)
	for i, c := range v.Branch.Choices {
		fmt.Fprintf(out, "   %d) %s -> %s\n", i, c.Text, c.NextBranchID)
	}
}
