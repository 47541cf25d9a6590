package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner/local"
	"github.com/toolgate/toolgate/config"
	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/resource"
	"github.com/toolgate/toolgate/schema"
	"github.com/toolgate/toolgate/server"
	"github.com/toolgate/toolgate/tool"
)

type options struct {
	Config   string `short:"c" long:"config" description:"config file location" required:"true"`
	Terminal bool   `long:"terminal" description:"register the built-in terminal tool"`
	Verbose  bool   `short:"v" long:"verbose" description:"enable debug logging"`
}

func main() {
	opts := &options{}
	if _, err := flags.Parse(opts); err != nil {
		os.Exit(1)
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	registry := tool.NewRegistry()
	if opts.Terminal {
		goshService, err := gosh.New(ctx, local.New())
		if err != nil {
			return err
		}
		if err = tool.RegisterTerminal(registry, goshService); err != nil {
			return err
		}
	}

	serverOptions := []server.Option{
		server.WithImplementation(schema.Implementation{Name: cfg.Server.Name, Version: cfg.Server.Version}),
		server.WithRegistry(registry),
		server.WithGate(consent.NewGate(cfg.GateConfig(), consent.WithLogger(logger))),
		server.WithLogger(logger),
	}
	if len(cfg.Capabilities) > 0 {
		serverOptions = append(serverOptions, server.WithCapabilities(cfg.Capabilities))
	}
	for _, providerConfig := range cfg.ProviderConfigs() {
		provider := resource.New(providerConfig, logger)
		provider.StartIdleSweep(ctx)
		serverOptions = append(serverOptions, server.WithProvider(provider))
	}

	srv, err := server.New(serverOptions...)
	if err != nil {
		return err
	}

	// a stdio session has a single caller; the parent process issues its token
	if token := os.Getenv("TOOLGATE_TOKEN"); token != "" {
		caller, err := consent.CallerFromToken(token)
		if err != nil {
			return err
		}
		ctx = consent.WithCaller(ctx, caller)
		logger.Info("caller identified", "client", caller.ClientID, "role", caller.Role)
	}

	logger.Info("starting", "server", cfg.Server.Name, "version", cfg.Server.Version)
	return srv.Stdio(ctx).ListenAndServe()
}
