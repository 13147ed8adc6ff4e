package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
)

func newDBHealthCommand(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	var folderID string
	cmd := &cobra.Command{
		Use:   "dbhealth",
		Short: "Check the run ledger database and list recent runs of a folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			if a.db == nil {
				return errors.New("run ledger is not configured")
			}
			if err := a.db.HealthCheck(cmd.Context(), timeout); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\n", a.db.Dialect())

			if folderID == "" {
				return nil
			}
			runs, err := a.runs.ListByFolder(cmd.Context(), folderID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "runs for %s: %d\n", folderID, len(runs))
			for _, r := range runs {
				msg := ""
				if r.ErrorMessage != nil {
					msg = *r.ErrorMessage
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %-3s %-7s records=%d %s\n",
					r.StartedAt.Format(time.RFC3339), r.Extractor, r.Status, r.Records, msg)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "ping timeout")
	cmd.Flags().StringVar(&folderID, "folder", "", "list the runs of this folder")
	return cmd
}

func newExtractCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <bom|sap|cs> <folder_id>",
		Short: "Run a single extractor on a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, id := constants.Source(args[0]), args[1]
			if err := common.ValidateFolderID(id); err != nil {
				return err
			}
			out, err := opts.app.processor.RunOne(cmd.Context(), src, id)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"folder_id": id,
				"source":    src,
				"records":   out.Records(),
			})
		},
	}
}
