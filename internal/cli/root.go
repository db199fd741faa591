package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "podium",
	Short: "podium — automated presentation evaluation",
	Long: `podium evaluates recorded presentations: a slide deck plus an audio
recording go in, a stream of AI critiques comes out. Independent reviewers
score structure, delivery, assumed knowledge, and audience fit; an
aggregate verdict with five bounded scores is persisted per user, and low
scores trigger remediation artifacts (a corrected slide mockup, a model
audio exemplar).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "file", "f", "", "path to podium config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
}
