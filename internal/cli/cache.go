package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saltiyazan/charmhub-scrape/pkg/cache"
	"github.com/saltiyazan/charmhub-scrape/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInvalidateCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != config.BackendFile {
				printInfo("Cache backend is %q; nothing to clear on disk", c.Config.Cache.Backend)
				return nil
			}
			dir, err := c.Config.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.Config.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheInvalidateCommand creates the "cache invalidate" subcommand.
func (c *CLI) cacheInvalidateCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop the cached catalog so the next pass re-fetches it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx, serviceOptions{})
			if err != nil {
				return err
			}
			defer svc.Close()

			opts := c.surveyOptions(false, token)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if err := svc.charmhub.InvalidateCatalog(ctx, opts.CacheToken); err != nil {
				return fmt.Errorf("invalidate catalog: %w", err)
			}
			printSuccess("Invalidated catalog for token %s", StyleHighlight.Render(opts.CacheToken))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "cache-token", "", "catalog cache token (default: today's UTC date)")
	return cmd
}
