package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brk3/habitstats/internal/server"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all habits and logs as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newClient().Export(cmd.Context())
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			return writeExport(cmd.OutOrStdout(), data)
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		if err := writeExport(f, data); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", exportOutput, err)
		}
		cmd.PrintErrf("Wrote %d habits and %d logs to %s\n", len(data.Habits), len(data.Logs), exportOutput)
		return nil
	},
}

func writeExport(w io.Writer, data *server.ExportResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "file to write, - for stdout")
	rootCmd.AddCommand(exportCmd)
}
