package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var lookupPatterns []string

// lookupCmd: acmatch lookup word...
var lookupCmd = &cobra.Command{
	Use:   "lookup [words...]",
	Short: "Check whether words are exactly one of the configured patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide words to look up")
		}

		eng, _, err := newEngine(cfgFile, lookupPatterns, false, false)
		if err != nil {
			return fmt.Errorf("failed to initialize scan engine: %w", err)
		}

		found := false
		for _, word := range args {
			rule, ok := eng.Lookup([]byte(word))
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t-\n", word)
				continue
			}
			found = true
			label := rule.Label
			if label == "" {
				label = rule.Pattern
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", word, label)
		}
		if found {
			return ErrMatchesFound
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringArrayVarP(&lookupPatterns, "pattern", "p", nil, "Pattern to look up against; replaces the configured patterns (repeatable)")
}
