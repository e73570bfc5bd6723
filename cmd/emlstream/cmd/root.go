package cmd

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:          "emlstream",
		Short:        "Tools for inspecting and round-tripping email messages",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log parser activity to stderr")
}

// Execute runs the command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}

// logContext returns a context carrying a console logger that writes to the
// command's stderr.
func logContext(cmd *cobra.Command) context.Context {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().
		Logger()

	return logger.WithContext(context.Background())
}

// openMessage opens the named message file. The name "-" is stdin.
func openMessage(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}
