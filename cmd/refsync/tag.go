package main

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/paper"
)

var tagColor string

func init() {
	tagColorCmd.Flags().StringVar(&tagColor, "color", "", "Display color, e.g. #00aa00")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagColorCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage paper tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <tag> <arxiv-id>",
	Short: "Tag a paper",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagAdd,
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <tag> <arxiv-id>",
	Short: "Remove a tag from a paper",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagRemove,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with paper counts",
	RunE:  runTagList,
}

var tagColorCmd = &cobra.Command{
	Use:   "color <tag>",
	Short: "Set a tag's display color",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagColor,
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Delete a tag from every paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagDelete,
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	p := changeTagMembership(args[1], args[0], true)
	if humanOutput {
		outputHuman("Tagged %s with %s\n", p.ArxivID, args[0])
		return nil
	}
	return outputJSON(p)
}

func runTagRemove(cmd *cobra.Command, args []string) error {
	p := changeTagMembership(args[1], args[0], false)
	if humanOutput {
		outputHuman("Removed tag %s from %s\n", args[0], p.ArxivID)
		return nil
	}
	return outputJSON(p)
}

func runTagList(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	tags, err := db.ListTags()
	if err != nil {
		exitWithError(ExitError, "listing tags: %v", err)
	}
	if humanOutput {
		if len(tags) == 0 {
			outputHuman("No tags.\n")
			return nil
		}
		for _, t := range tags {
			outputHuman("%-20s %d papers", t.Name, t.PaperCount)
			if t.Color != "" {
				outputHuman("  %s", t.Color)
			}
			outputHuman("\n")
		}
		return nil
	}
	return outputJSON(tags)
}

func runTagColor(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	if err := db.SetTagColor(args[0], tagColor); err != nil {
		exitWithError(ExitError, "setting tag color: %v", err)
	}
	if humanOutput {
		outputHuman("Set color for %s\n", args[0])
		return nil
	}
	return outputJSON(StatusResponse{Status: "updated"})
}

func runTagDelete(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	removed, err := db.DeleteTag(args[0])
	if err != nil {
		exitWithError(ExitError, "deleting tag: %v", err)
	}
	if !removed {
		exitWithError(ExitNotFound, "tag not found: %s", args[0])
	}
	if humanOutput {
		outputHuman("Deleted tag %s\n", args[0])
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted"})
}

func changeTagMembership(rawID, tag string, add bool) *paper.Paper {
	db := openLibrary()
	defer db.Close()

	id := arxiv.NormalizeID(arxiv.ParseID(rawID))
	if id == "" {
		exitWithError(ExitError, "unrecognized arXiv ID: %s", rawID)
	}

	p, err := db.GetPaper(id)
	if err != nil {
		exitWithError(ExitError, "getting paper: %v", err)
	}
	if p == nil {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}

	tags := make([]string, 0, len(p.Tags)+1)
	for _, t := range p.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	if add {
		tags = append(tags, tag)
	}

	updated, err := db.UpdatePaper(id, paper.Update{Tags: &tags})
	if err != nil {
		exitWithError(ExitError, "updating paper: %v", err)
	}
	return updated
}
