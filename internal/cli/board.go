package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Manage evidence items on the board",
}

var evidenceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an evidence item",
	Long: `Add an evidence item to a column (uncategorized by default).

Example:
  casefile evidence add --content "HR email 2024-03-03" --type email --allegation <id>
  casefile evidence add --content "Pay stubs" --attach stubs.pdf --column <column-id>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		item, err := evidenceFromFlags(f)
		if err != nil {
			return err
		}
		column, _ := f.GetString("column")

		var added model.EvidenceItem
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, it, err := m.AddEvidence(item, column)
			added = it
			return next, nil, err
		}); err != nil {
			return err
		}
		return render(added, func() { fmt.Println(added.ID) })
	},
}

var evidenceUpdateCmd = &cobra.Command{
	Use:   "update <evidence-id>",
	Short: "Change fields of an evidence item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.UpdateEvidence(args[0], patch)
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Updated evidence %s", args[0])
		return nil
	},
}

var evidenceRmCmd = &cobra.Command{
	Use:   "rm <evidence-id>",
	Short: "Delete an evidence item and every link to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			return m.DeleteEvidence(args[0])
		}); err != nil {
			return err
		}
		done("Deleted evidence %s", args[0])
		return nil
	},
}

var evidenceMvCmd = &cobra.Command{
	Use:   "mv <evidence-id> <column-id> [position]",
	Short: "Move an evidence item to a column (at the end unless a position is given)",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		position := -1
		if len(args) == 3 {
			p, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("position must be a number: %w", err)
			}
			position = p
		}
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			index := position
			if index < 0 {
				index = len(m.Board.Columns[args[1]].EvidenceIDs)
			}
			next, err := m.MoveEvidence(args[0], args[1], index)
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Moved evidence %s to %s", args[0], args[1])
		return nil
	},
}

var evidenceLinkCmd = &cobra.Command{
	Use:   "link <evidence-id> [allegation-id...]",
	Short: "Set the allegations an evidence item supports (none clears the links)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.LinkEvidenceToAllegation(args[0], args[1:])
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Linked evidence %s to %d allegation(s)", args[0], len(args)-1)
		return nil
	},
}

var columnCmd = &cobra.Command{
	Use:   "column",
	Short: "Manage evidence board columns",
}

var columnAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a column at the end of the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var added model.Column
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, col, err := m.AddColumn(args[0])
			added = col
			return next, nil, err
		}); err != nil {
			return err
		}
		return render(added, func() { fmt.Println(added.ID) })
	},
}

var columnRenameCmd = &cobra.Command{
	Use:   "rename <column-id> <title>",
	Short: "Rename a column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.RenameColumn(args[0], args[1])
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Renamed column %s", args[0])
		return nil
	},
}

var columnRmCmd = &cobra.Command{
	Use:   "rm <column-id>",
	Short: "Delete a column; its evidence moves to uncategorized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.DeleteColumn(args[0])
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Deleted column %s", args[0])
		return nil
	},
}

var columnOrderCmd = &cobra.Command{
	Use:   "order <column-id...>",
	Short: "Reorder columns; every column must be listed exactly once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.ReorderColumns(args)
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Reordered %d columns", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceAddCmd, evidenceUpdateCmd, evidenceRmCmd, evidenceMvCmd, evidenceLinkCmd)

	for _, c := range []*cobra.Command{evidenceAddCmd, evidenceUpdateCmd} {
		c.Flags().String("content", "", "short label shown on the card")
		c.Flags().String("description", "", "longer description")
		c.Flags().String("type", "", "email, document, statement, witness, photo, spreadsheet, presentation, audio, video, other")
		c.Flags().String("date", "", "date as you want it shown")
		c.Flags().StringSlice("tag", nil, "tag (repeatable)")
		c.Flags().String("status", "", "pending, verified, needs_more, insufficient")
		c.Flags().StringSlice("allegation", nil, "linked allegation id (repeatable)")
		c.Flags().StringSlice("attach", nil, "file to describe as an attachment (repeatable; contents are not stored)")
	}
	evidenceAddCmd.Flags().String("column", "", "column id (default: uncategorized)")
	_ = evidenceAddCmd.MarkFlagRequired("content")

	rootCmd.AddCommand(columnCmd)
	columnCmd.AddCommand(columnAddCmd, columnRenameCmd, columnRmCmd, columnOrderCmd)
}

func evidenceFromFlags(f *pflag.FlagSet) (model.EvidenceItem, error) {
	var item model.EvidenceItem
	item.Content, _ = f.GetString("content")
	item.Description, _ = f.GetString("description")
	typ, _ := f.GetString("type")
	item.Type = model.EvidenceType(typ)
	item.Date, _ = f.GetString("date")
	item.Tags, _ = f.GetStringSlice("tag")
	status, _ := f.GetString("status")
	item.ValidationStatus = model.ValidationStatus(status)
	item.LinkedAllegationIDs, _ = f.GetStringSlice("allegation")

	paths, _ := f.GetStringSlice("attach")
	attachments, err := describeFiles(paths)
	if err != nil {
		return item, err
	}
	item.Attachments = attachments
	return item, nil
}

// patchFromFlags builds a patch from the flags that were set
func patchFromFlags(f *pflag.FlagSet) (casemodel.EvidencePatch, error) {
	var patch casemodel.EvidencePatch
	str := func(name string) *string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetString(name)
		return &v
	}
	slice := func(name string) *[]string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetStringSlice(name)
		return &v
	}

	patch.Content = str("content")
	patch.Description = str("description")
	patch.Type = str("type")
	patch.Date = str("date")
	patch.ValidationStatus = str("status")
	patch.Tags = slice("tag")
	patch.LinkedAllegationIDs = slice("allegation")

	if paths := slice("attach"); paths != nil {
		attachments, err := describeFiles(*paths)
		if err != nil {
			return patch, err
		}
		patch.Attachments = &attachments
	}
	return patch, nil
}

// describeFiles records name, type and size of each file; contents stay on disk
func describeFiles(paths []string) ([]model.Attachment, error) {
	out := make([]model.Attachment, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("attachment: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("attachment %s is a directory", p)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(p))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		out = append(out, model.Attachment{
			Name:     filepath.Base(p),
			MimeType: mimeType,
			Size:     info.Size(),
		})
	}
	return out, nil
}
