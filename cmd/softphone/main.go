package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/dkeye/voicecall/internal/adapters/media"
	"github.com/dkeye/voicecall/internal/adapters/rtc"
	"github.com/dkeye/voicecall/internal/adapters/signalclient"
	"github.com/dkeye/voicecall/internal/adapters/ui"
	"github.com/dkeye/voicecall/internal/app/call"
	"github.com/dkeye/voicecall/internal/app/ice"
	"github.com/dkeye/voicecall/internal/config"
	"github.com/dkeye/voicecall/internal/domain"
)

func main() {
	flags := pflag.NewFlagSet("softphone", pflag.ExitOnError)
	flags.String("config", "", "config file (default config/config.<CONFIG_ENV>.yaml)")
	flags.String("client.identity", "", "participant id, e.g. alice@example.org")
	flags.String("client.username", "", "display name")
	flags.String("client.server_url", "", "relay WebSocket URL")
	flags.Bool("client.deny_media", false, "simulate denied microphone/camera permission")
	flags.String("log_level", "", "zerolog level")
	_ = flags.Parse(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && flags.Changed("log_level") {
		zerolog.SetGlobalLevel(lvl)
	}

	self, err := domain.ParseParticipantID(cfg.Client.Identity)
	if err != nil {
		pterm.Error.Println("set --client.identity (or VOICE_CLIENT_IDENTITY)")
		os.Exit(2)
	}

	client, err := signalclient.Dial(ctx, cfg.Client.ServerURL, self, cfg.Client.Username, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("relay unreachable")
	}
	defer client.Close()

	source := media.NewSyntheticSource(log.Logger)
	source.Deny(cfg.Client.Deny)
	peers := rtc.NewFactory(rtc.WebRTCConfig(cfg.ICEServers), log.Logger)

	mgr := call.NewManager(self, client, source, peers,
		call.WithConfig(call.Config{
			OutgoingTimeout: cfg.Call.OutgoingTimeout,
			ICE: ice.Config{
				SoftLimit:       cfg.Call.ICESoftLimit,
				HardLimit:       cfg.Call.ICEHardLimit,
				CleanupInterval: cfg.Call.ICECleanupInterval,
			},
		}),
		call.WithNotifier(ui.NewConsole()),
		call.WithLogger(log.Logger),
	)

	// The relay link outlives ctx so Run can still send endCall on shutdown.
	listenCtx, stopListen := context.WithCancel(context.Background())
	defer stopListen()
	go func() {
		if err := client.Listen(listenCtx, mgr); err != nil {
			log.Error().Err(err).Msg("relay connection lost")
		}
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	pterm.Info.Printfln("Signed in as %s. Type help for commands.", self)
	if err := ui.Loop(ctx, os.Stdin, mgr); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("call manager stopped")
	}
	stopListen()
	<-client.Done()
	pterm.Info.Println("Bye")
}
