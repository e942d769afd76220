package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnolang/acmatch/formatter"
	tt "github.com/gnolang/acmatch/internal/types"
	"github.com/gnolang/acmatch/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchPatterns []string

// watchCmd: acmatch watch dir...
var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Rescan files whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide directories to watch")
		}

		eng, cfg, err := newEngine(cfgFile, watchPatterns, false, false)
		if err != nil {
			return fmt.Errorf("failed to initialize scan engine: %w", err)
		}

		w, err := watch.New(eng, logger, reportTo(cmd.OutOrStdout()),
			watch.WithExtensions(cfg.Extensions...),
			watch.WithIgnore(cfg.IgnorePaths...))
		if err != nil {
			return err
		}
		if err := w.Add(args...); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("Watching for changes", zap.Strings("dirs", args))
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringArrayVarP(&watchPatterns, "pattern", "p", nil, "Pattern to search for; replaces the configured patterns (repeatable)")
}

func reportTo(out io.Writer) watch.ReportFunc {
	return func(filename string, matches []tt.Match) {
		if len(matches) == 0 {
			fmt.Fprintf(out, "no matches in %s\n", filename)
			return
		}
		sourceCode, err := formatter.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			return
		}
		fmt.Fprintln(out, formatter.GenerateFormattedMatches(matches, sourceCode))
	}
}
