package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codepr/tritedb/internal/applog"
	"github.com/codepr/tritedb/internal/cluster"
	"github.com/codepr/tritedb/internal/config"
	"github.com/codepr/tritedb/internal/server"
	"github.com/codepr/tritedb/internal/session"
	"github.com/codepr/tritedb/internal/store"
)

type rootFlags struct {
	host     string
	port     int
	confPath string
	mode     string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tritedb-server",
		Short: "Run the tritedb trie-indexed key-value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.host, "address", "a", "", "listening host (overrides config)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "listening port (overrides config)")
	cmd.Flags().StringVarP(&flags.confPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "STANDALONE or CLUSTER (overrides config)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newJoinCmd())
	return cmd
}

func runServer(flags *rootFlags) error {
	cfg, err := config.Load(flags.confPath)
	if err != nil {
		return err
	}
	if flags.host != "" {
		cfg.IPAddress = flags.host
	}
	if flags.port != 0 {
		cfg.IPPort = flags.port
	}
	if flags.mode != "" {
		cfg.Mode = config.Mode(flags.mode)
	}
	if flags.verbose {
		cfg.LogLevel = "DEBUG"
	}

	logger, err := applog.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st := store.New()
	sessions := session.NewTable()
	self := cluster.Member{Host: cfg.IPAddress, Port: fmt.Sprint(cfg.IPPort), Self: true}
	members := cluster.NewList(self)

	app := server.NewApp(st, sessions, members, cfg, logger)

	listener, err := server.NewListener(cfg)
	if err != nil {
		return err
	}
	logger.Info("listening", zap.String("address", listener.Addr().String()), zap.String("mode", string(cfg.Mode)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(app, listener)

	if cfg.Mode == config.Cluster {
		bus, err := cluster.Listen(cfg.IPAddress, cfg.IPPort, members, self, logger)
		if err != nil {
			return err
		}
		app.Bus = bus
		go func() {
			if err := bus.Serve(ctx); err != nil {
				logger.Error("cluster bus stopped", zap.Error(err))
			}
		}()
	}

	return srv.Run(ctx)
}
