package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/spf13/cobra"
)

var allegationCmd = &cobra.Command{
	Use:   "allegation",
	Short: "Work with stated allegations",
}

var allegationRmCmd = &cobra.Command{
	Use:   "rm <allegation-id>",
	Short: "Delete an allegation and unlink it from all evidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			return m.DeleteAllegation(args[0])
		}); err != nil {
			return err
		}
		done("Deleted allegation %s", args[0])
		return nil
	},
}

var allegationStatusCmd = &cobra.Command{
	Use:   "status <allegation-id> <draft|validated|ready>",
	Short: "Set the preparation status of an allegation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.SetAllegationStatus(args[0], args[1])
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Allegation %s is now %s", args[0], args[1])
		return nil
	},
}

var allegationPromoteCmd = &cobra.Command{
	Use:   "promote <unstated-claim-id>",
	Short: "Turn an unstated claim into a stated allegation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var promoted model.Allegation
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, a, err := m.PromoteUnstatedClaim(args[0])
			promoted = a
			return next, nil, err
		}); err != nil {
			return err
		}
		return render(promoted, func() { fmt.Println(promoted.ID) })
	},
}

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Link evidence to the gaps listed under a response strategy",
}

var gapLinkCmd = &cobra.Command{
	Use:   "link <strategy> <gap> [evidence-id...]",
	Short: "Set the evidence filling a gap (no ids clears it)",
	Long: `Set the evidence filling a gap. Strategy and gap are zero-based positions
as shown by "casefile show".

Example:
  casefile gap link 0 1 <evidence-id> <evidence-id>`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := parseIndex("strategy", args[0])
		if err != nil {
			return err
		}
		gap, err := parseIndex("gap", args[1])
		if err != nil {
			return err
		}
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.SetGapEvidence(strategy, gap, args[2:])
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Gap %d of strategy %d linked to %d item(s)", gap, strategy, len(args)-2)
		return nil
	},
}

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Document concrete instances under a response strategy",
}

var instanceAddCmd = &cobra.Command{
	Use:   "add <strategy> <notes>",
	Short: "Add an instance to a strategy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := parseIndex("strategy", args[0])
		if err != nil {
			return err
		}
		paths, _ := cmd.Flags().GetStringSlice("attach")
		attachments, err := describeFiles(paths)
		if err != nil {
			return err
		}

		var added model.Instance
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, inst, err := m.AddInstance(strategy, args[1], attachments)
			added = inst
			return next, nil, err
		}); err != nil {
			return err
		}
		return render(added, func() { fmt.Println(added.ID) })
	},
}

var instanceUpdateCmd = &cobra.Command{
	Use:   "update <strategy> <instance-id> <notes>",
	Short: "Replace the notes of an instance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := parseIndex("strategy", args[0])
		if err != nil {
			return err
		}
		var attachments []model.Attachment
		if cmd.Flags().Changed("attach") {
			paths, _ := cmd.Flags().GetStringSlice("attach")
			if attachments, err = describeFiles(paths); err != nil {
				return err
			}
		}
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.UpdateInstance(strategy, args[1], args[2], attachments)
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Updated instance %s", args[1])
		return nil
	},
}

var instanceRmCmd = &cobra.Command{
	Use:   "rm <strategy> <instance-id>",
	Short: "Delete an instance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := parseIndex("strategy", args[0])
		if err != nil {
			return err
		}
		if err := mutate(func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.DeleteInstance(strategy, args[1])
			return next, nil, err
		}); err != nil {
			return err
		}
		done("Deleted instance %s", args[1])
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Keep your own notes next to analysis sections",
}

var notesSetCmd = &cobra.Command{
	Use:   "set <section>",
	Short: "Store a suggestion and notes for a section",
	Long: `Store a suggestion and notes for a section such as statedAllegations
or responseStrategies. Existing notes for the section are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var note model.SectionNote
		note.Suggestion, _ = cmd.Flags().GetString("suggestion")
		note.Notes, _ = cmd.Flags().GetString("notes")
		err := withApp(func(ctx context.Context, a *app) error {
			now := a.session.Now()
			return a.session.Update(ctx, func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
				next, err := m.SetSectionNotes(args[0], note, now)
				return next, nil, err
			})
		})
		if err != nil {
			return err
		}
		done("Saved notes for %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(allegationCmd, gapCmd, instanceCmd, notesCmd)
	allegationCmd.AddCommand(allegationRmCmd, allegationStatusCmd, allegationPromoteCmd)
	gapCmd.AddCommand(gapLinkCmd)
	instanceCmd.AddCommand(instanceAddCmd, instanceUpdateCmd, instanceRmCmd)
	notesCmd.AddCommand(notesSetCmd)

	instanceAddCmd.Flags().StringSlice("attach", nil, "file to describe as an attachment (repeatable)")
	instanceUpdateCmd.Flags().StringSlice("attach", nil, "replace attachments with these files (repeatable)")
	notesSetCmd.Flags().String("suggestion", "", "what you would change in this section")
	notesSetCmd.Flags().String("notes", "", "free-form notes")
}

func parseIndex(name, s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", name, s)
	}
	return i, nil
}
