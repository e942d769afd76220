package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gnolang/acmatch/formatter"
	tt "github.com/gnolang/acmatch/internal/types"
	"github.com/gnolang/acmatch/scan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stdinPath = "-"

// ErrMatchesFound is returned by scan when at least one pattern occurred.
var ErrMatchesFound = errors.New("matches found")

var (
	scanPatterns   []string
	ignorePaths    string
	scanJsonOutput bool
	outPath        string
	noCache        bool
	lazyAccepts    bool
	showProgress   bool
	workers        int
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Report every occurrence of the configured patterns",
	Long: `Scans files and directories for the configured patterns.
Use "-" to read from standard input.
Example) acmatch scan -p TODO -p FIXME ./...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		eng, cfg, err := newEngine(cfgFile, scanPatterns, lazyAccepts, !noCache)
		if err != nil {
			return fmt.Errorf("failed to initialize scan engine: %w", err)
		}

		opts := scan.Options{
			Extensions: cfg.Extensions,
			Ignore:     cfg.IgnorePaths,
			Workers:    workers,
		}
		if ignorePaths != "" {
			for _, path := range strings.Split(ignorePaths, ",") {
				path = strings.TrimSpace(path)
				eng.IgnorePath(path)
				opts.Ignore = append(opts.Ignore, path)
			}
		}
		if showProgress {
			opts.Progress = cmd.ErrOrStderr()
		}

		err = runScanProcess(ctx, logger, eng, args, cmd.InOrStdin(), cmd.OutOrStdout(), opts, scanJsonOutput, outPath)
		if saveErr := eng.SaveCache(); saveErr != nil {
			logger.Warn("Error saving cache", zap.Error(saveErr))
		}
		return err
	},
}

func init() {
	scanCmd.Flags().StringArrayVarP(&scanPatterns, "pattern", "p", nil, "Pattern to search for; replaces the configured patterns (repeatable)")
	scanCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	scanCmd.Flags().BoolVar(&scanJsonOutput, "json", false, "Output matches in JSON format")
	scanCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the result cache")
	scanCmd.Flags().BoolVar(&lazyAccepts, "lazy", false, "Resolve accept sets while scanning instead of at build time")
	scanCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "Number of files scanned concurrently (0 = number of CPUs)")
}

func runScanProcess(
	ctx context.Context,
	logger *zap.Logger,
	eng scan.ScanEngine,
	paths []string,
	stdin io.Reader,
	stdout io.Writer,
	opts scan.Options,
	isJson bool,
	jsonOutput string,
) error {
	sources := make(map[string][]byte)
	var filePaths []string
	var inputs []scan.Source
	for _, path := range paths {
		if path != stdinPath {
			filePaths = append(filePaths, path)
			continue
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("error reading standard input: %w", err)
		}
		sources[path] = data
		inputs = append(inputs, scan.Source{Name: path, Data: data})
	}

	matches, err := scan.ProcessSources(ctx, logger, eng, inputs, scan.ProcessSource)
	if err != nil {
		return err
	}
	fileMatches, err := scan.ProcessFiles(ctx, logger, eng, filePaths, opts, scan.ProcessFile)
	if err != nil {
		return err
	}
	matches = append(matches, fileMatches...)

	if err := printMatches(logger, stdout, matches, sources, isJson, jsonOutput); err != nil {
		return err
	}

	if len(matches) > 0 {
		return ErrMatchesFound
	}
	return nil
}

func printMatches(logger *zap.Logger, w io.Writer, matches []tt.Match, sources map[string][]byte, isJson bool, jsonOutput string) error {
	matchesByFile := make(map[string][]tt.Match)
	for _, m := range matches {
		matchesByFile[m.Filename] = append(matchesByFile[m.Filename], m)
	}

	if isJson {
		return writeJSON(w, matchesByFile, jsonOutput)
	}

	sortedFiles := make([]string, 0, len(matchesByFile))
	for filename := range matchesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		var sourceCode *formatter.SourceCode
		if data, ok := sources[filename]; ok {
			sourceCode = formatter.NewSourceCode(data)
		} else {
			var err error
			sourceCode, err = formatter.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
		}
		fmt.Fprintln(w, formatter.GenerateFormattedMatches(matchesByFile[filename], sourceCode))
	}
	return nil
}

func writeJSON(w io.Writer, v any, jsonOutput string) error {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshalling matches to JSON: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
