package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/eka-dev/ftracker/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configureLogLevelFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, cancel, func(msg string) { log.Warn().Msg(msg) }, os.Exit)

	code := cmd.Execute(ctx)
	cancel()
	os.Exit(code)
}

// configureLogLevelFromEnv enables debug logging when DEBUG_FTRACKER is set to
// anything other than "", "0" or "false"; logging is disabled otherwise.
func configureLogLevelFromEnv() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEBUG_FTRACKER"))) {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 2)
	signal.Notify(stopChan, os.Interrupt)
	return stopChan
}

// handleInterrupt cancels in-flight work on the first interrupt and exits on
// the second.
func handleInterrupt(stopChan chan os.Signal, cancel context.CancelFunc, logFn func(string), exitFn func(int)) {
	<-stopChan
	logFn("Interrupt signal received. Cancelling...")
	cancel()
	<-stopChan
	logFn("Interrupt signal received. Exiting...")
	exitFn(130)
}
