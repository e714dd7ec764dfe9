package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "svassist",
	Short: "Retrieval and caching core for the Sportz Village program assistant",
	Long: `svassist maintains a semantic cache over school timetables, lesson
plans and sports equipment data, plus the chat logs of the program
assistant. It rebuilds the cache from pipe-delimited text tables,
answers federated semantic searches, and exposes everything over
HTTP and MCP for chat agents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".svassist.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
