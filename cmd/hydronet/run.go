package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hydrosim/hydronet/config"
	"github.com/hydrosim/hydronet/monitoring"
	"github.com/hydrosim/hydronet/recording"
	"github.com/hydrosim/hydronet/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a network simulation.",
	Long: "`run --network [file]` loads a network description, runs it " +
		"over its full horizon, and optionally records every series into " +
		"a SQLite database.",
	Run: func(cmd *cobra.Command, args []string) {
		networkPath, _ := cmd.Flags().GetString("network")
		dbPath, _ := cmd.Flags().GetString("record")
		monitorOn, _ := cmd.Flags().GetBool("monitor")
		dashboard, _ := cmd.Flags().GetBool("dashboard")
		port, _ := cmd.Flags().GetInt("port")
		verbose, _ := cmd.Flags().GetBool("verbose")

		network, err := config.NewLoader().Load(networkPath)
		if err != nil {
			log.Fatalf("Error loading network: %v", err)
		}

		runner := sim.NewStepRunner(network.Graph)
		if verbose {
			runner.AcceptHook(sim.NewStepLogger(log.Default()))
		}

		if monitorOn || dashboard {
			monitor := monitoring.NewMonitor().WithPortNumber(port)
			if dashboard {
				monitor = monitor.WithDashboard()
			}
			monitor.RegisterRunner(runner)
			monitor.RegisterGraph(network.Graph)
			monitor.StartServer()
		}

		if err := runner.Start(network.RunConfig); err != nil {
			log.Fatalf("Error starting run: %v", err)
		}

		if err := network.WriteObservations(); err != nil {
			log.Fatalf("Error writing observations: %v", err)
		}

		for i := 0; i < runner.Horizon(); i++ {
			if err := runner.Step(i); err != nil {
				log.Fatalf("Error at step %d: %v", i, err)
			}
		}

		if dbPath != "" {
			rec := recording.New(dbPath)
			if err := recording.ExportRun(rec, runner); err != nil {
				log.Fatalf("Error recording run: %v", err)
			}
			if err := rec.Close(); err != nil {
				log.Fatalf("Error closing database: %v", err)
			}
			fmt.Printf("Run %s recorded to %s\n", runner.ID(), dbPath)
		}

		if err := runner.Finish(); err != nil {
			log.Fatalf("Error finishing run: %v", err)
		}

		fmt.Printf("Run %s completed, %d steps.\n",
			runner.ID(), runner.Horizon())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("network", "network.yaml",
		"Path of the YAML network description")
	runCmd.Flags().String("record", "",
		"Record every series into this SQLite database")
	runCmd.Flags().Bool("monitor", false,
		"Serve the monitoring API while running")
	runCmd.Flags().Bool("dashboard", false,
		"Serve the monitoring API and open the dashboard in a browser")
	runCmd.Flags().Int("port", 0,
		"Monitoring port, 0 picks a random port")
	runCmd.Flags().Bool("verbose", false,
		"Log every step and device while running")
}
