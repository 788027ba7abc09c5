package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	ctx := newCommandContext(opts)

	rootCmd := &cobra.Command{
		Use:           "karaoke",
		Short:         "Karaoke queue CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	flags.StringVarP(&opts.server, "server", "s", "", "Daemon address (defaults to paths.api_bind)")
	flags.StringVar(&opts.token, "token", "", "API token (defaults to paths.api_token)")
	flags.BoolVar(&opts.json, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newSongsCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
