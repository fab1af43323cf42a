package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/virta/internal/config"
)

var (
	ingestConfigPath string
	ingestBatchMode  string
	ingestDryRun     bool
	ingestDebug      bool
	ingestQuiet      bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one collection pass and exit",
	Long: `Enumerate the Azure subscription once, map every virtual machine
into ingestion records, and transmit them to the Diode target.

Credentials come from the environment: AZURE_TENANT_ID, AZURE_CLIENT_ID,
AZURE_CLIENT_SECRET, AZURE_SUBSCRIPTION_ID, DIODE_TARGET, DIODE_CLIENT_ID
and DIODE_CLIENT_SECRET.`,
	Example: `  virta ingest                     # One-shot run with env credentials
  virta ingest --batch per-vm      # One ingest request per VM
  virta ingest --dry-run --debug   # Log records, transmit nothing`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestConfigPath, "config", "c", "", "Path to YAML config file")
	ingestCmd.Flags().StringVarP(&ingestBatchMode, "batch", "b", "", "Batch mode: all, per-vm (default from config)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Map and log records without opening a Diode session")
	ingestCmd.Flags().BoolVar(&ingestDebug, "debug", false, "Enable debug output")
	ingestCmd.Flags().BoolVarP(&ingestQuiet, "quiet", "q", false, "Suppress all non-error output")
	ingestCmd.MarkFlagsMutuallyExclusive("debug", "quiet")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestBatchMode != "" &&
		ingestBatchMode != config.BatchAll && ingestBatchMode != config.BatchPerVM {
		return fmt.Errorf("invalid batch mode: %s (must be %s or %s)",
			ingestBatchMode, config.BatchAll, config.BatchPerVM)
	}

	ingest := &IngestCommand{
		ConfigPath: ingestConfigPath,
		BatchMode:  ingestBatchMode,
		DryRun:     ingestDryRun,
		Debug:      ingestDebug,
		Quiet:      ingestQuiet,
	}
	return ingest.Run()
}
