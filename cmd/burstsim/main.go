// burstsim runs a bursty-source/static-routing experiment described
// by a topology file and an application configuration file, and
// writes the trace and metric series gathered during the run.
package main

import (
	"fmt"
	"os"

	"github.com/denizberkeozsoy/burstnet"
	"github.com/iti/evt/evtm"
	"github.com/spf13/cobra"
)

var (
	topoFile  string
	appFile   string
	traceFile string
	statFile  string
	expName   string
	stopTime  float64
)

var rootCmd = &cobra.Command{
	Use:   "burstsim",
	Short: "burstsim simulates bursty traffic sources over a statically routed network",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&topoFile, "topo", "", "topology configuration file (yaml or json)")
	rootCmd.Flags().StringVar(&appFile, "app", "", "application configuration file (yaml or json)")
	rootCmd.Flags().StringVar(&traceFile, "trace", "", "file the run trace is written to")
	rootCmd.Flags().StringVar(&statFile, "stats", "", "file the metric series are written to")
	rootCmd.Flags().StringVar(&expName, "name", "experiment", "name recorded in the run artifacts")
	rootCmd.Flags().Float64Var(&stopTime, "stop", 100.0, "virtual time (seconds) the run stops at")
	rootCmd.MarkFlagRequired("topo")
	rootCmd.MarkFlagRequired("app")
}

func run(cmd *cobra.Command, args []string) error {
	syn := map[string]string{"topo": topoFile, "app": appFile}

	evtMgr := evtm.New()
	traceMgr := burstnet.CreateTraceManager(expName, len(traceFile) > 0)
	statMgr := burstnet.CreateStatManager(expName, true)

	burstnet.BuildExperiment(syn, evtMgr, traceMgr, statMgr)

	evtMgr.Run(stopTime)

	if len(traceFile) > 0 {
		traceMgr.WriteToFile(traceFile)
	}
	if len(statFile) > 0 {
		statMgr.WriteToFile(statFile)
	}

	fmt.Printf("run complete at virtual time %g\n", stopTime)
	return nil
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
