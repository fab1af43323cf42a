package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "virta",
		Short: "Azure to NetBox ingestion collector",
		Long: `Virta - Azure to NetBox Ingestion Collector

Virta enumerates virtual machines, disks and network interfaces from an
Azure subscription using service-principal credentials, normalizes them,
and streams the records to a NetBox Diode ingestion endpoint.

Stateless by design: every run is a fresh snapshot, nothing is stored
between invocations.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Virta {{.Version}} - Azure to NetBox Ingestion Collector
`)
}
