package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/infra/dataset"
	"github.com/kilianp07/fleetpool/infra/logger"
)

var (
	importDB    string
	importTable string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Dataset commands",
}

var datasetImportCmd = &cobra.Command{
	Use:   "import SOURCE",
	Short: "Load a CSV, YAML or JSON journey table, local or over HTTP, into SQLite",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetImport,
}

func init() {
	datasetImportCmd.Flags().StringVar(&importDB, "db", "fleet.db", "SQLite database file")
	datasetImportCmd.Flags().StringVar(&importTable, "table", dataset.DefaultTable, "table name")
	datasetCmd.AddCommand(datasetImportCmd)
	rootCmd.AddCommand(datasetCmd)
}

func runDatasetImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src := dataset.Config{Path: args[0]}
	if strings.HasPrefix(args[0], "http://") || strings.HasPrefix(args[0], "https://") {
		// Remote sources reuse the configured credentials.
		src = dataset.Config{URL: args[0], Auth: cfg.Dataset.Auth}
	}
	js, err := dataset.Load(ctx, src)
	if err != nil {
		return err
	}
	store, err := dataset.OpenSQLite(importDB, importTable)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.New("dataset").Errorf("close %s: %v", importDB, err)
		}
	}()
	if err := store.Save(ctx, js); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d journeys into %s (table %s)\n", len(js), importDB, importTable)
	return nil
}
