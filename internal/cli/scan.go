package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/observability"
	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

// scanFlags holds flags shared by commands that run a survey pass.
type scanFlags struct {
	iface       string
	noCache     bool
	refresh     bool
	concurrency int
	cacheToken  string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.iface, "interface", "", "relation interface to survey (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-fetch the catalog and landing pages")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "charms processed at once (default from config)")
	cmd.Flags().StringVar(&f.cacheToken, "cache-token", "", "catalog cache token (default: today's UTC date)")
}

func (f *scanFlags) serviceOptions() serviceOptions {
	return serviceOptions{noCache: f.noCache, refresh: f.refresh, concurrency: f.concurrency}
}

func (c *CLI) passOptions(f *scanFlags) survey.Options {
	opts := c.surveyOptions(f.refresh, f.cacheToken)
	if f.iface != "" {
		opts.Interface = f.iface
	}
	return opts
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		flags  scanFlags
		sortBy string
		desc   bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Survey the catalog and print library usage",
		Long: `Scan fetches the Charmhub catalog, resolves each charm's source repository
and probes it for the tls-certificates interface library.

The table lists every charm in catalog order unless --sort is given. The
summary reports interface and library usage and the share of each library
version among library users.`,
		Example: `  charmscan scan
  charmscan scan --sort platform --desc
  charmscan scan --format json --refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want table or json)", format)
			}
			var field survey.SortField
			if sortBy != "" {
				f, err := survey.ParseSortField(sortBy)
				if err != nil {
					return err
				}
				field = f
			}

			ctx := cmd.Context()
			svc, err := c.newServices(ctx, flags.serviceOptions())
			if err != nil {
				return err
			}
			defer svc.Close()

			spin := newSpinnerWithContext(ctx, "Fetching catalog...")
			prev := observability.Survey()
			observability.SetSurveyHooks(&passProgress{update: func(n int) {
				spin.SetMessage("Surveyed %d charms...", n)
			}})
			defer observability.SetSurveyHooks(prev)

			prog := newProgress(c.Logger)
			spin.Start()
			res, err := svc.runner.Execute(ctx, c.passOptions(&flags))
			spin.Stop()
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			prog.done(fmt.Sprintf("Surveyed %d charms", len(res.Rows)))

			if field != "" {
				dir := survey.Ascending
				if desc {
					dir = survey.Descending
				}
				res = res.Sorted(field, dir)
			}

			if err := writeReport(cmd.OutOrStdout(), res, format); err != nil {
				return err
			}
			if format == formatTable {
				printPassStats(res)
				printNewline()
				printNextStep("Browse interactively", "charmscan browse")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by field: name or platform")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")

	return cmd
}
