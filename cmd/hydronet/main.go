// The hydronet command runs, inspects, and exports network simulations
// described by YAML network files.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hydrosim/hydronet/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "hydronet",
	Short: "Hydronet runs step-driven network simulations from YAML " +
		"network descriptions.",
	Long: `Hydronet runs step-driven network simulations from YAML network ` +
		`descriptions. It can execute a run with optional recording and a ` +
		`live dashboard, inspect a network's execution order without ` +
		`running it, and export recorded runs as CSV.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func main() {
	config.LoadDotEnv()
	Execute()
}
