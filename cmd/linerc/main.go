package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

func main() {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(newBatchCmd())

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setupLogging configures zerolog based on flags and returns a context
// carrying the logger.
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return logger.WithContext(ctx)
}
