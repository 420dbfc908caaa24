package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/config"
	"github.com/matzehuels/speakerbox/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the calculation, render and extraction cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, where, err := c.openConfiguredCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()

			var n int
			switch ch := ch.(type) {
			case *cache.FileCache:
				n, err = ch.Clear()
			case *cache.RedisCache:
				n, err = ch.Clear(ctx)
			default:
				printInfo("Caching is disabled")
				return nil
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "clear cache")
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("%s", where)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, where, err := c.openConfiguredCache(cmd.Context())
			if err != nil {
				return err
			}
			defer ch.Close()

			cfg, _ := c.config()
			printKeyValue("Backend", cfg.Cache.Backend)
			printKeyValue("Location", where)
			if fc, ok := ch.(*cache.FileCache); ok {
				entries, size, err := fc.Usage()
				if err != nil {
					return err
				}
				printKeyValue("Entries", fmt.Sprintf("%d", entries))
				printKeyValue("Size", formatBytes(size))
			}
			return nil
		},
	}
}

// openConfiguredCache opens the configured backend and describes where it lives.
func (c *CLI) openConfiguredCache(ctx context.Context) (cache.Cache, string, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, "", err
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, "", err
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return ch, cfg.Cache.Redis.Addr + " (prefix " + cfg.Cache.Redis.Prefix + ")", nil
	case config.BackendNone:
		return ch, "disabled", nil
	}
	return ch, "Directory: " + cfg.Cache.Dir, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
