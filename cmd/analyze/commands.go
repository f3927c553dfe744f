package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-governor/internal/app"
	"github.com/yungbote/neurobridge-governor/internal/data/db"
	tutoringrepo "github.com/yungbote/neurobridge-governor/internal/data/repos/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/ingest"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
	"github.com/yungbote/neurobridge-governor/internal/temporalx"
	"github.com/yungbote/neurobridge-governor/internal/temporalx/analysisrun"
)

type options struct {
	configPath string
	strict     bool
	pretty     bool
	verbose    bool
	schedule   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "analyze",
		Short:         "Analyze learning sessions for cognitive, ethical and governance risks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML threshold overlay (defaults to GOVERNOR_CONFIG_PATH)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	fileCmd := &cobra.Command{
		Use:   "file [trace.jsonl]",
		Short: "Replay a JSONL trace export through the governor and print one report per session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runFile(cmd.Context(), cfg, opts, newLogger(opts), in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	fileCmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on the first rejected event")

	storedCmd := &cobra.Command{
		Use:   "stored <session-id>...",
		Short: "Analyze sessions persisted in the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runStored(cmd.Context(), cfg, opts, newLogger(opts), args, cmd.OutOrStdout())
		},
	}
	storedCmd.Flags().BoolVar(&opts.schedule, "schedule", false, "submit a Temporal analysis run instead of analyzing in-process")

	root.AddCommand(fileCmd, storedCmd)
	return root
}

func newLogger(opts *options) *logger.Logger {
	if !opts.verbose {
		return logger.NewNop()
	}
	log, err := logger.New("development")
	if err != nil {
		return logger.NewNop()
	}
	return log
}

func loadConfig(opts *options) (tutoring.Config, error) {
	cfg := tutoring.LoadConfigFromEnv()
	path := strings.TrimSpace(opts.configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOVERNOR_CONFIG_PATH"))
	}
	if path == "" {
		return cfg, nil
	}
	return app.LoadTutoringOverlay(path, cfg)
}

// runFile feeds every event through the interactive path in file order and
// then analyzes each session in order of first appearance.
func runFile(ctx context.Context, cfg tutoring.Config, opts *options, log *logger.Logger, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	monitor := tutoring.NewMonitor(cfg, tutoring.MonitorDeps{Log: log})
	analyzer := tutoring.NewAnalyzer(cfg, tutoring.AnalyzerDeps{Log: log, Monitor: monitor})

	var order []uuid.UUID
	seen := map[uuid.UUID]bool{}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var ev ingest.RawEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			if opts.strict {
				return fmt.Errorf("line %d: %w", line, err)
			}
			fmt.Fprintf(errOut, "line %d: skipped: %v\n", line, err)
			continue
		}
		dec, err := monitor.Observe(ctx, ev, "")
		if err != nil {
			if opts.strict {
				return fmt.Errorf("line %d: %w", line, err)
			}
			fmt.Fprintf(errOut, "line %d: skipped: %v\n", line, err)
			continue
		}
		if id := dec.Trace.SessionID; !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if len(order) == 0 {
		return errors.New("no valid events")
	}

	reports := make([]any, 0, len(order))
	for _, id := range order {
		res, err := analyzer.AnalyzeSession(ctx, id)
		if err != nil {
			return err
		}
		reports = append(reports, res.Report)
	}
	return writeJSON(out, reports, opts.pretty)
}

func runStored(ctx context.Context, cfg tutoring.Config, opts *options, log *logger.Logger, args []string, out io.Writer) error {
	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", a, err)
		}
		ids = append(ids, id)
	}

	if opts.schedule {
		tcfg := temporalx.LoadConfig()
		tc, err := temporalx.NewClient(tcfg, log)
		if err != nil {
			return err
		}
		if tc == nil {
			return errors.New("TEMPORAL_ADDRESS is required with --schedule")
		}
		defer tc.Close()
		run, err := analysisrun.Start(ctx, tc, tcfg.TaskQueue, analysisrun.Request{SessionIDs: args, MaxParallel: cfg.AnalyzeConcurrency})
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]string{"workflow_id": run.GetID(), "run_id": run.GetRunID()}, opts.pretty)
	}

	svc, err := db.Open(db.LoadConfigFromEnv(), log)
	if err != nil {
		return err
	}
	defer svc.Close()
	analyzer := tutoring.NewAnalyzer(cfg, tutoring.AnalyzerDeps{Log: log, Store: tutoringrepo.NewStore(svc.DB(), log)})

	reports := make([]any, 0, len(ids))
	for _, id := range ids {
		res, err := analyzer.AnalyzeStored(ctx, id)
		if err != nil {
			return err
		}
		reports = append(reports, res.Report)
	}
	return writeJSON(out, reports, opts.pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
