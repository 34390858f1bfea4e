package cli

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/morrowdev/recache/internal/store"
)

// LsOptions holds flags for the ls command.
type LsOptions struct {
	Fingerprint string
	Branch      int
	AllBranches bool
	Start       float64
	End         float64
	Status      string
}

// recordView is the JSON projection of a record for CLI output.
type recordView struct {
	ID          string  `json:"id"`
	Branch      int     `json:"branch"`
	Fingerprint string  `json:"fingerprint"`
	InsertedAt  string  `json:"inserted_at"`
	LogicalTime float64 `json:"logical_time"`
	Status      string  `json:"status"`
}

// NewLsCommand lists records in deterministic order.
func NewLsCommand(root *RootOptions) *cobra.Command {
	opts := &LsOptions{}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List cache records",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			filter := store.ListFilter{Fingerprint: opts.Fingerprint}
			if !opts.AllBranches {
				filter.Branch = &opts.Branch
			}
			if opts.Start != 0 || !math.IsInf(opts.End, 1) {
				filter.Window = &store.Window{Start: opts.Start, End: opts.End}
			}
			if opts.Status != "" {
				status, err := parseStatus(opts.Status)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --status", err)
				}
				filter.Status = &status
			}

			records, err := s.List(cmd.Context(), filter)
			if err != nil {
				return WrapExitError(ExitCommandError, "list records", err)
			}

			views := make([]recordView, len(records))
			for i, rec := range records {
				views[i] = toView(rec)
			}

			f := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}
			return f.Success(views, func(w io.Writer) { renderRecords(w, views) })
		},
	}

	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "filter by fingerprint")
	cmd.Flags().IntVar(&opts.Branch, "branch", 0, "branch to list")
	cmd.Flags().BoolVar(&opts.AllBranches, "all-branches", false, "list every branch")
	cmd.Flags().Float64Var(&opts.Start, "start", 0, "window start (logical time)")
	cmd.Flags().Float64Var(&opts.End, "end", math.Inf(1), "window end (logical time)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (pending|completed|failed)")

	return cmd
}

func toView(rec store.Record) recordView {
	return recordView{
		ID:          rec.ID,
		Branch:      rec.Branch,
		Fingerprint: rec.Fingerprint,
		InsertedAt:  rec.InsertedAt.Format(time.RFC3339),
		LogicalTime: rec.LogicalTime,
		Status:      rec.Status.String(),
	}
}

func renderRecords(w io.Writer, views []recordView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tBRANCH\tLOGICAL TIME\tINSERTED\tFINGERPRINT")
	for _, v := range views {
		fp := v.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%s\t%s\n",
			v.ID, v.Status, v.Branch, v.LogicalTime, v.InsertedAt, fp)
	}
	tw.Flush()
}

func parseStatus(raw string) (store.Status, error) {
	switch raw {
	case "failed":
		return store.StatusFailed, nil
	case "pending":
		return store.StatusPending, nil
	case "completed":
		return store.StatusCompleted, nil
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}
