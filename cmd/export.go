package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	var viewFlag, exportDir, exportFormat string
	var offline bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transactions of a period to a JSON or CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat = strings.ToLower(exportFormat)
			if exportFormat != "json" && exportFormat != "csv" {
				return clierr.New(clierr.Validation, "Invalid export format. Supported formats: json, csv", nil)
			}
			view, err := a.resolveView(viewFlag)
			if err != nil {
				return err
			}
			resp, err := a.fetchTransactions(cmd.Context(), view, offline)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(exportDir, 0o750); err != nil {
				return clierr.New(clierr.Internal, "Failed to create export directory", err)
			}
			timestamp := a.now().Format("20060102_150405")
			fileName := fmt.Sprintf("ftracker_%s_%s.%s", strings.ToLower(view.String()), timestamp, exportFormat)
			path := filepath.Join(exportDir, fileName)

			if err := writeExport(path, exportFormat, resp.Current); err != nil {
				log.Error().Err(err).Str("path", path).Msg("Failed to export transactions")
				return clierr.New(clierr.Internal, "Failed to export transactions", err)
			}
			cmd.Printf("Exported %d transactions to %s\n", len(resp.Current), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&viewFlag, "view", "v", "", "Period to export [Day, Week, Month, Year, All]")
	cmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Directory to write the file to")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Export format: json or csv")
	cmd.Flags().BoolVar(&offline, "offline", false, "Export the last fetched copy instead of calling the server")
	return cmd
}

func writeExport(path, exportFormat string, txs []client.Transaction) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	if exportFormat == "json" {
		return exportJSON(file, txs)
	}
	return exportCSV(file, txs)
}

func exportJSON(w io.Writer, txs []client.Transaction) error {
	if txs == nil {
		txs = []client.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(txs)
}

func exportCSV(w io.Writer, txs []client.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "type", "amount", "description"}); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{tx.ID, tx.CreatedAt, tx.Type.Label(), strconv.FormatInt(tx.Amount, 10), tx.Description}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
