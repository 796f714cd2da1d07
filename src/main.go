package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"personal/discord_go/src/client"
	"personal/discord_go/src/config"
	"personal/discord_go/src/entity"
	"personal/discord_go/src/logger"
)

func main() {
	app := &cli.App{
		Name:  "discord_go",
		Usage: "Discord bot over the gateway",
		Flags: []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			runCmd(),
		},
		Action: runBot,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML configuration file",
		EnvVars: []string{"DISCORD_CONFIG"},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Connect to the gateway and serve commands",
		Flags:   []cli.Flag{configFlag()},
		Action:  runBot,
	}
}

func runBot(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	lg, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(lg)

	bot, err := client.New(cfg, lg)
	if err != nil {
		return err
	}
	bot.OnReady(func(_ context.Context, ev client.ReadyEvent) {
		lg.Info("logged in", "user", ev.User.Tag(), "session", ev.SessionID)
	})
	bot.OnMessageCreate(func(ctx context.Context, m *entity.Message) {
		if m.Author.IsBot() || m.Content != bot.Prefix()+"ping" {
			return
		}
		reply, err := m.Reply(ctx, "Pong!")
		if err != nil {
			lg.Error("ping reply failed", "channel", m.ChannelID, "error", err)
			return
		}
		if _, err := reply.Edit(ctx, fmt.Sprintf("Pong! %dms", bot.Latency().Milliseconds())); err != nil {
			lg.Warn("ping edit failed", "message", reply.ID, "error", err)
		}
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- bot.ConnectToGateway(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	if err := bot.Disconnect(); err != nil {
		lg.Warn("disconnect", "error", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
