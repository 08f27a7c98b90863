package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"github.com/tryanzu/overflow/board/realtime"
	"github.com/tryanzu/overflow/core/shell"
	"github.com/tryanzu/overflow/deps"
	"github.com/tryanzu/overflow/internal/dal"
	"github.com/tryanzu/overflow/modules/api"
)

var log = logging.MustGetLogger("overflow")

func main() {
	rootCmd := &cobra.Command{Use: "overflow"}
	rootCmd.PersistentFlags().StringVar(&deps.ConfigFile, "config", "", "yaml configuration file (defaults to $CONFIG_FILE or ./config.yaml)")

	cmdAPI := &cobra.Command{
		Use:   "api [addr]",
		Short: "Starts API web server",
		Long: `Starts API web server and the realtime socket
listening in the given address or http.addr.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			b := mustBoot()
			defer b.Close()

			addr := b.deps.Config().HTTP.Addr
			if len(args) == 1 {
				addr = args[0]
			}

			var module api.Module
			g, err := b.graph()
			if err == nil {
				err = module.Populate(g)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			module.Run(addr)
		},
	}

	var moderator string
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Starts interactive moderation shell",
		Run: func(cmd *cobra.Command, args []string) {
			b := mustBoot(tooling...)
			defer b.Close()

			// Events published from the console reach API processes through the relay.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			b.hub.Start(ctx)

			shell.Console{Engine: b.engine, Moderator: moderator}.RunShell()
		},
	}
	shellCmd.Flags().StringVar(&moderator, "as", "", "moderator username to act as")
	shellCmd.MarkFlagRequired("as")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seeds demo users, content and a collection",
		Run: func(cmd *cobra.Command, args []string) {
			b := mustBoot(tooling...)
			defer b.Close()
			c := b.deps.Config()
			if err := dal.Seed(context.Background(), b.deps.Stores(), c.Moderation.Moderators.Names()); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			log.Info("seed completed")
		},
	}

	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Signs a realtime socket token",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			d, err := deps.Bootstrap(deps.IgniteConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			token, err := realtime.Token([]byte(d.Config().Secret), args[0], ttl)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Println(token)
		},
	}
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(cmdAPI, shellCmd, seedCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// tooling boots what console commands need. They run next to an api process
// and leave its ledis data dir alone.
var tooling = []deps.Ignitor{
	deps.IgniteConfig,
	deps.IgniteLogger,
	deps.IgniteMongoDB,
	deps.IgniteRedis,
	deps.IgniteSentry,
	deps.IgniteStores,
}

func mustBoot(ignitors ...deps.Ignitor) *board {
	b, err := boot(ignitors...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return b
}
