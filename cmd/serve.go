package cmd

import (
	"context"

	"github.com/lepinkainen/steamshelf/internal/config"
	"github.com/lepinkainen/steamshelf/internal/proxy"
	"github.com/lepinkainen/steamshelf/internal/steam"
)

var serveProxy = func(ctx context.Context, s *proxy.Server) error {
	return s.ListenAndServe(ctx)
}

// ServeCmd runs the proxy
type ServeCmd struct {
	Port           int      `short:"p" help:"Port to listen on (overrides server.port and PORT)"`
	AllowedOrigins []string `name:"allowed-origin" help:"Browser origin allowed to call the proxy; repeatable (overrides server.allowed_origins and ALLOWED_ORIGINS)"`
}

func (s *ServeCmd) Run() error {
	config.SetPort(s.Port)
	config.SetAllowedOrigins(s.AllowedOrigins)

	client := steam.NewClient(
		steam.WithAPIURL(config.SteamAPIURL),
		steam.WithStoreURL(config.SteamStoreURL),
	)
	server := proxy.NewServer(client, proxy.Config{
		Port:              config.Port,
		AllowedOrigins:    config.AllowedOrigins,
		PageSize:          config.ServerPageSize,
		EnrichScores:      config.EnrichScores,
		EnrichConcurrency: config.EnrichConcurrency,
	})

	ctx, stop := signalContext()
	defer stop()
	return serveProxy(ctx, server)
}
