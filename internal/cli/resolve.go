package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		noCache bool
		doProbe bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <charm|landing-url>",
		Short: "Find a charm's source repository",
		Long: `Resolve reads a charm's landing page and prints the source repository it
links to. Pass a charm name or a full landing page URL. With --probe the
repository is also searched for the interface library.`,
		Example: `  charmscan resolve mysql-k8s
  charmscan resolve https://charmhub.io/vault --probe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx, serviceOptions{noCache: noCache})
			if err != nil {
				return err
			}
			defer svc.Close()

			landing := args[0]
			if !strings.Contains(landing, "://") {
				if err := errs.ValidateCharmName(landing); err != nil {
					return err
				}
				landing = svc.charmhub.LandingURL(landing)
			} else if err := errs.ValidateURL(landing); err != nil {
				return err
			}

			repoURL, err := svc.resolver.Resolve(ctx, landing)
			if err != nil {
				return err
			}
			printSuccess("Resolved %s", StyleHighlight.Render(args[0]))
			printKeyValue("Landing", landing)
			printKeyValue("Repository", repoURL)

			if doProbe {
				printDetection(svc.prober.Probe(ctx, charm.Repository{URL: repoURL}))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&doProbe, "probe", false, "also probe the repository for the library")
	return cmd
}

// probeCommand creates the probe command.
func (c *CLI) probeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <repository-url>",
		Short: "Detect the library version in a repository",
		Long: `Probe checks the candidate library paths of a repository, in order, and
prints the first version found.`,
		Example: `  charmscan probe https://github.com/canonical/mysql-k8s-operator`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errs.ValidateURL(args[0]); err != nil {
				return err
			}
			svc, err := c.newServices(cmd.Context(), serviceOptions{noCache: true})
			if err != nil {
				return err
			}
			defer svc.Close()

			d := svc.prober.ProbeURL(cmd.Context(), strings.TrimSuffix(args[0], "/"))
			printDetection(d)
			if !d.Found() {
				return errs.New(errs.ErrCodeProbeMiss, "no library found in %s", args[0])
			}
			return nil
		},
	}
	return cmd
}

func printDetection(d charm.Detection) {
	if d.Found() {
		printSuccess("Library %s", StyleHighlight.Render(d.Version))
		printKeyValue("Path", d.Candidate)
	} else {
		printWarning("Library not found")
	}
	printDetail("%d paths checked", d.Attempts)
}
