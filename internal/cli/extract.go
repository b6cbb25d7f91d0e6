package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/unive-tools/schedule-sync/internal/config"
	"github.com/unive-tools/schedule-sync/internal/logger"
	"github.com/unive-tools/schedule-sync/internal/scraper"
	"github.com/unive-tools/schedule-sync/internal/storage"
)

type extractOptions struct {
	configPath string
	url        string
	format     string
	verbose    bool
	fetcher    scraper.Fetcher
}

// NewExtractCmd creates the schedule-extract command
func NewExtractCmd() *cobra.Command {
	return newExtractCmd(&extractOptions{})
}

func newExtractCmd(opts *extractOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule-extract",
		Short: "Extract your UNIVE class schedule into a file",
		Long: `Reads the published UNIVE class timetable, keeps the classes of the chosen period
and of your surname group, and saves them to schedule.json (or .yaml/.ics).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default ./schedule.yaml or ~/.config/unive-schedule/schedule.yaml)")
	cmd.Flags().StringVar(&opts.url, "url", "", "Schedule page URL (overrides source.url)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml or ics")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging and print a summary")

	return cmd
}

func runExtract(cmd *cobra.Command, opts *extractOptions) error {
	out := cmd.OutOrStdout()

	format, err := storage.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fail(out, MsgExtractFailed, err)
		return nil
	}
	if err := setupLogger(cfg, opts.verbose, cmd.ErrOrStderr()); err != nil {
		fail(out, MsgExtractFailed, err)
		return nil
	}
	defer finish()

	p := NewPrompter(cmd.InOrStdin(), out)

	choice, err := p.Ask(periodQuestion())
	if err != nil {
		return nil
	}
	period, ok := PeriodForChoice(choice)
	if !ok {
		fmt.Fprintln(out, "Invalid choice, nothing to do.")
		return nil
	}

	var half scraper.SurnameHalf
	for {
		initial, err := p.Ask("Type the initial of your surname: ")
		if err != nil {
			return nil
		}
		half, err = scraper.HalfForInitial(initial)
		if err == nil {
			break
		}
		fmt.Fprintln(out, "Invalid input, please type letters only.")
	}

	dir, err := p.Ask("Type the directory where the schedule will be saved (leave blank for the current one): ")
	if err != nil {
		return nil
	}

	url := opts.url
	if url == "" {
		url = cfg.Source.URL
	}
	sc := scraper.New(
		scraper.WithURL(url),
		scraper.WithUserAgent(cfg.Source.UserAgent),
		scraper.WithTimeout(cfg.Source.Timeout),
		scraper.WithFetcher(opts.fetcher),
	)

	logger.Info("extracting schedule", logger.Fields{
		"url":    sc.URL(),
		"period": period,
		"half":   half.String(),
	})

	sched, err := sc.FetchSchedule(cmd.Context(), scraper.Query{Period: period, Half: half})
	if err != nil {
		reportExtractError(out, err)
		return nil
	}
	logger.DefaultMetrics().AddCounter("scrape.slots", int64(sched.Len()))

	path, err := storage.OutputPath(dir, format)
	if err != nil {
		fail(out, MsgExtractFailed, err)
		return nil
	}
	if err := storage.Save(path, sched); err != nil {
		fail(out, MsgExtractFailed, err)
		return nil
	}

	if opts.verbose {
		WriteSummary(out, sched)
	}
	fmt.Fprintf(out, MsgDone, path)
	return nil
}

func reportExtractError(w io.Writer, err error) {
	logger.Error("extraction failed", nil, err)

	if errors.Is(err, scraper.ErrPeriodNotFound) {
		fmt.Fprintln(w, MsgPeriodNotFound)
		return
	}
	fail(w, MsgExtractFailed, err)
}
