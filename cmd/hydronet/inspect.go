package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hydrosim/hydronet/config"
	"github.com/hydrosim/hydronet/sim"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show a network's devices and execution order without running it.",
	Long: "`inspect --network [file]` loads a network description, builds " +
		"the execution order, and prints every device with its connections.",
	Run: func(cmd *cobra.Command, args []string) {
		networkPath, _ := cmd.Flags().GetString("network")
		terminalNames, _ := cmd.Flags().GetStringSlice("upstream-of")

		network, err := config.NewLoader().Load(networkPath)
		if err != nil {
			log.Fatalf("Error loading network: %v", err)
		}

		selection := network.Graph.SelectAll()
		if len(terminalNames) > 0 {
			terminals := make([]*sim.Router, 0, len(terminalNames))
			for _, name := range terminalNames {
				r := network.Graph.RouterByName(name)
				if r == nil {
					log.Fatalf("Error: unknown router %q", name)
				}
				terminals = append(terminals, r)
			}
			selection = network.Graph.SelectUpstream(terminals...)
		}

		order, err := sim.BuildExecutionOrder(network.Graph, selection)
		if err != nil {
			log.Fatalf("Error ordering network: %v", err)
		}

		fmt.Printf("Horizon: %d\n", network.RunConfig.Horizon)
		fmt.Println("Execution order:")
		for i, device := range order {
			fmt.Printf("  %3d. %s\n", i+1, describeDevice(device))
		}
	},
}

func describeDevice(device sim.Device) string {
	switch d := device.(type) {
	case *sim.Router:
		tag := "router"
		if d.IsObserved() {
			tag = "observed router"
		}
		return fmt.Sprintf("%s (%s, kind %s)", d.Name(), tag, d.Kind())
	case *sim.Producer:
		peers := make([]string, 0, len(d.Inlets())+len(d.Outlets()))
		for _, r := range d.Inlets() {
			peers = append(peers, "<-"+r.Name())
		}
		for _, r := range d.Outlets() {
			peers = append(peers, "->"+r.Name())
		}
		for _, r := range d.Receivers() {
			peers = append(peers, "<~"+r.Name())
		}
		for _, r := range d.Senders() {
			peers = append(peers, "~>"+r.Name())
		}
		return fmt.Sprintf("%s (producer, %s)",
			d.Name(), strings.Join(peers, " "))
	default:
		return device.Name()
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("network", "network.yaml",
		"Path of the YAML network description")
	inspectCmd.Flags().StringSlice("upstream-of", nil,
		"Restrict to devices upstream of these routers")
}
