package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// showView extends the record projection with the decoded outcome.
type showView struct {
	recordView
	Result json.RawMessage `json:"result,omitempty"`
}

// NewShowCommand displays a single record by id, including its stored
// outcome payload.
func NewShowCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show one cache record and its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "get record", err)
			}
			if rec == nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("record %s not found", args[0]), nil)
			}

			view := showView{recordView: toView(*rec)}
			if len(rec.Result) > 0 && json.Valid(rec.Result) {
				view.Result = json.RawMessage(rec.Result)
			}

			f := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}
			return f.Success(view, func(w io.Writer) {
				fmt.Fprintf(w, "id:           %s\n", view.ID)
				fmt.Fprintf(w, "status:       %s\n", view.Status)
				fmt.Fprintf(w, "branch:       %d\n", view.Branch)
				fmt.Fprintf(w, "fingerprint:  %s\n", view.Fingerprint)
				fmt.Fprintf(w, "logical time: %g\n", view.LogicalTime)
				fmt.Fprintf(w, "inserted at:  %s\n", view.InsertedAt)
				if view.Result != nil {
					fmt.Fprintf(w, "result:       %s\n", view.Result)
				}
			})
		},
	}
}
