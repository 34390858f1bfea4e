package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/morrowdev/recache/internal/store"
)

// statsView is the JSON projection of store statistics.
type statsView struct {
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// NewStatsCommand reports record counts per status.
func NewStatsCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count records per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.Stats(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "read stats", err)
			}

			view := statsView{
				Failed:    stats[store.StatusFailed],
				Pending:   stats[store.StatusPending],
				Completed: stats[store.StatusCompleted],
			}
			view.Total = view.Failed + view.Pending + view.Completed

			f := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}
			return f.Success(view, func(w io.Writer) {
				fmt.Fprintf(w, "completed: %d\n", view.Completed)
				fmt.Fprintf(w, "pending:   %d\n", view.Pending)
				fmt.Fprintf(w, "failed:    %d\n", view.Failed)
				fmt.Fprintf(w, "total:     %d\n", view.Total)
			})
		},
	}
}
