package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "intervu",
	Short:   "Mock interview service with scored answers and performance reports",
	Version: version,
	Long: `intervu runs mock interview sessions: it generates role-specific
questions, scores each answer across four categories, and produces a
final performance report. Without a configured LLM API key it runs
fully offline on built-in question banks and heuristic scoring.`,
}

func main() {
	// A .env next to the binary is a development convenience, not a
	// requirement.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(beginCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(reportsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
