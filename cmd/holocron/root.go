package main

import (
	"github.com/OFFIS-RIT/holocron/internal/util"
	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/logger/console"

	"github.com/spf13/cobra"
)

var debug bool

// rootCmd is the holocron entry point
var rootCmd = &cobra.Command{
	Use:   "holocron",
	Short: "Derive statistics from the Star Wars catalog API",
	Long: `holocron walks the film and people collections of a SWAPI-compatible
catalog and reports:

  - the film with the longest opening crawl
  - the character appearing in the most films
  - the three species appearing in the most films
  - the planet supplying the most distinct vehicle pilots`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: debug}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", util.GetEnvBool("DEBUG", false), "enable debug logging")
	rootCmd.AddCommand(statsCmd)
}
