package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/portlint/portlint/internal/symbol"
)

var symbolsJSONOutput bool

var symbolsCmd = &cobra.Command{
	Use:   "symbols [files...]",
	Short: "List the public symbols extracted from reference files",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide reference file paths")
			os.Exit(1)
		}
		os.Exit(runSymbols(args))
	},
}

func init() {
	symbolsCmd.Flags().BoolVar(&symbolsJSONOutput, "json", false, "Output symbols in JSON format")
}

func runSymbols(paths []string) int {
	extractor := symbol.New()
	analyses := make([]symbol.Analysis, 0, len(paths))
	for _, path := range paths {
		analyses = append(analyses, extractor.File(path, filepath.Base(path)))
	}

	if symbolsJSONOutput {
		d, err := json.MarshalIndent(analyses, "", "  ")
		if err != nil {
			logger.Error("Error marshalling symbols to JSON", zap.Error(err))
			return 1
		}
		fmt.Println(string(d))
	} else {
		for _, a := range analyses {
			if a.Err != "" {
				fmt.Printf("%s: error: %s\n", a.Module, a.Err)
				continue
			}
			fmt.Printf("%s: %d functions, %d classes\n", a.Module, len(a.Functions()), len(a.Classes()))
			for _, s := range a.Symbols {
				fmt.Printf("  %s %s\n", s.Kind, s.Name)
			}
		}
	}

	for _, a := range analyses {
		if a.Err != "" {
			return 1
		}
	}
	return 0
}
