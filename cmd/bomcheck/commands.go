package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bom-validator/internal/async"
	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/export"
	"github.com/joseph-ayodele/bom-validator/internal/ingest"
	"github.com/joseph-ayodele/bom-validator/internal/server"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

type rootOptions struct {
	logLevel string
	app      *app
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "bomcheck",
		Short:         "Reconcile pump BOM, SAP datasheet and cross-section drawing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts.logLevel)
			if err != nil {
				return err
			}
			opts.app, err = newApp(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.app != nil {
				opts.app.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newProcessCommand(opts),
		newExtractCommand(opts),
		newCompareCommand(opts),
		newExportCommand(opts),
		newServeCommand(opts),
		newWatchCommand(opts),
		newDBHealthCommand(opts),
	)
	return root
}

func newProcessCommand(opts *rootOptions) *cobra.Command {
	var compare bool
	cmd := &cobra.Command{
		Use:   "process [folder_id...]",
		Short: "Run every extractor on the given folders, or on all raw folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			ids := args
			if len(ids) == 0 {
				var err error
				if ids, err = a.layout.ListFolderIDs(); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, id := range ids {
				if err := common.ValidateFolderID(id); err != nil {
					a.logger.Warn("cli.process.skipped", "folder_id", id, "error", err)
					continue
				}
				results, err := a.processor.ProcessFolder(cmd.Context(), id)
				if errors.Is(err, common.ErrNotFound) {
					a.logger.Warn("cli.process.skipped", "folder_id", id, "error", err)
					continue
				}
				if err != nil {
					return err
				}
				line := map[string]any{"folder_id": id, "result": results.Summary()}
				if compare {
					cmp, err := a.compare.Compare(cmd.Context(), id)
					if err != nil {
						a.logger.Warn("cli.compare.failed", "folder_id", id, "error", err)
					} else {
						line["components"] = len(cmp.Entries)
					}
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compare, "compare", false, "reconcile each folder after extraction")
	return cmd
}

func newCompareCommand(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compare <folder_id>",
		Short: "Reconcile the extracted artifacts of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := common.ValidateFolderID(args[0]); err != nil {
				return err
			}
			cmp, err := opts.app.compare.Compare(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch strings.ToLower(output) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cmp)
			case "table", "":
				return writeComparisonTable(cmd.OutOrStdout(), cmp)
			default:
				return fmt.Errorf("unsupported output %q", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json")
	return cmd
}

func writeComparisonTable(w io.Writer, cmp *entity.Comparison) error {
	table := tablewriter.NewTable(w)
	table.Header("Component", "BOM", "SAP", "CS", "BOM Terms", "SAP Terms", "CS Terms")
	for _, e := range cmp.Entries {
		if err := table.Append(
			e.Component, mark(e.InBOM), mark(e.InSAP), mark(e.InCS),
			strings.Join(e.BOMTerms, ", "), strings.Join(e.SAPTerms, ", "), strings.Join(e.CSTerms, ", "),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <folder_id>",
		Short: "Write the comparison of a folder as an XLSX or PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := common.ValidateFolderID(id); err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			a := opts.app
			cmp, err := a.compare.Latest(id)
			if err == nil && cmp == nil {
				cmp, err = a.compare.Compare(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			body, err := a.exporter.Render(cmp, f)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s_comparison.%s", id, f)
			}
			if err := storage.WriteFile(out, body); err != nil {
				return err
			}
			abs, _ := filepath.Abs(out)
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "report format: xlsx, pdf")
	cmd.Flags().StringVar(&out, "out", "", "output path (default <folder_id>_comparison.<format>)")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, metrics and the optional gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			api := server.NewAPI(a.layout, a.processor, a.compare, a.exporter, a.runs)
			srv := server.NewServer(server.Config{
				HTTPAddr:       a.cfg.Server.HTTPAddr,
				GRPCAddr:       a.cfg.Server.GRPCAddr,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
			}, api, a.logger)
			return srv.Run(cmd.Context())
		},
	}
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var initial bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process and reconcile folders as their documents change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			ctx := cmd.Context()
			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Root:        a.layout.RawDir(),
				InitialScan: initial,
				Debounce:    a.cfg.Watch.Debounce,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}

			q := async.NewProcessorQueue(a.processor, a.compare, a.logger,
				async.WithWorkers(a.cfg.Watch.Workers),
				async.WithQueueSize(a.cfg.Watch.QueueSize),
				async.WithProcessTimeout(a.cfg.Watch.ProcessTimeout),
			)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				q.Shutdown(shutdownCtx)
			}()

			for {
				select {
				case id, ok := <-events:
					if !ok {
						return nil
					}
					if err := common.ValidateFolderID(id); err != nil {
						a.logger.Warn("cli.watch.skipped", "folder_id", id, "error", err)
						continue
					}
					if err := q.Enqueue(ctx, async.Job{FolderID: id, Compare: true}); err != nil {
						a.logger.Warn("cli.watch.enqueue_failed", "folder_id", id, "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("cli.watch.error", "error", err)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&initial, "initial-scan", true, "queue every existing folder at startup")
	return cmd
}
