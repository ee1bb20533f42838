package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Metroynome/deadlocked-patch/pkg/config"
	"github.com/Metroynome/deadlocked-patch/pkg/host"

	"github.com/rs/zerolog/log"
)

func runCommand(configs []string) error {
	conf, err := config.Process(configs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	game, err := host.New(ctx, conf)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(signals)

	go func() {
		for {
			select {
			case <-game.Done():
				return
			case sig := <-signals:
				if sig == syscall.SIGUSR1 {
					if game.TogglePause() {
						log.Info().Msg("game loop paused")
					} else {
						log.Info().Msg("game loop running")
					}
					continue
				}

				log.Info().Stringer("signal", sig).Msg("shutting down")
				game.Cancel()
				return
			}
		}
	}()

	return game.Run()
}
