package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"story-branches/internal/interfaces"
	"story-branches/internal/story"

	"github.com/spf13/cobra"
)

var danglingCmd = &cobra.Command{
	Use:   "dangling <storyID>",
	Short: "List choices pointing at missing branches",
	Long: `Dangling lists every choice whose nextBranchId matches no branch of the
story, and the branches that cannot be reached from the first one.

Example:
  storyctl dangling 4f1c...
  storyctl dangling 4f1c... --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeFn, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return runDangling(cmd.Context(), repo, args[0], cmd.OutOrStdout(), flagJSON)
	},
}

type danglingReport struct {
	StoryID     string                    `json:"storyId"`
	Dangling    []story.DanglingReference `json:"dangling"`
	Unreachable []string                  `json:"unreachable"`
}

func runDangling(ctx context.Context, repo interfaces.StoryRepository, storyID string, out io.Writer, asJSON bool) error {
	st, err := repo.GetStory(ctx, storyID)
	if err != nil {
		return fmt.Errorf("get story: %w", err)
	}
	report := danglingReport{
		StoryID:     st.ID,
		Dangling:    story.FindDanglingReferences(st.Branches),
		Unreachable: story.UnreachableBranches(st.Branches),
	}
	if report.Dangling == nil {
		report.Dangling = []story.DanglingReference{}
	}
	if report.Unreachable == nil {
		report.Unreachable = []string{}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "story %s: %d branches\n", st.ID, len(st.Branches))
	if len(report.Dangling) == 0 {
		fmt.Fprintln(out, "no dangling choices")
	}
	for _, d := range report.Dangling {
		fmt.Fprintf(out, "dangling  %s[%d] %q -> %s\n", d.BranchID, d.ChoiceIndex, d.ChoiceText, d.NextBranchID)
	}
	for _, id := range report.Unreachable {
		fmt.Fprintf(out, "unreachable  %s\n", id)
	}
	return nil
}
