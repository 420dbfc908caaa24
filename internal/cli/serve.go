package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/api"
	"github.com/matzehuels/speakerbox/pkg/extract"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes calculate, layout, extract and the saved calculations over
HTTP. It stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ch, err := c.openCache(ctx, noCache)
			if err != nil {
				return err
			}
			runner := c.newRunnerWithCache(ch)
			defer runner.Close()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := api.New(runner,
				api.WithStore(st),
				api.WithDefaults(cfg.Defaults),
				api.WithLogger(c.Logger),
				api.WithExtractor(api.ExtractorFor(func(apiKey string) *extract.Client {
					return cfg.ExtractClient(apiKey, ch)
				})),
			)

			c.Logger.Info("listening", "addr", addr, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
