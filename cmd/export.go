package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/NJ2612/ev-charge-optimizer/config"
	"github.com/NJ2612/ev-charge-optimizer/infra/store"
	"github.com/NJ2612/ev-charge-optimizer/pkg/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the station usage history as CSV or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Network.DBPath)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = st.Close() }()

	history, err := st.UsageHistory(context.Background())
	if err != nil {
		return fmt.Errorf("read usage history: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch exportFormat {
	case "csv":
		return export.WriteCSV(w, history)
	case "json":
		return export.WriteJSON(w, history)
	}
	return fmt.Errorf("unknown format %q", exportFormat)
}
