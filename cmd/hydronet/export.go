package main

import (
	"context"
	"encoding/csv"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hydrosim/hydronet/recording"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a recorded series as CSV.",
	Long: "`export --db [file] --series [name]` reads one variable's " +
		"recorded series from a run database and writes it as CSV to " +
		"standard output.",
	Run: func(cmd *cobra.Command, args []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		seriesName, _ := cmd.Flags().GetString("series")

		reader := recording.NewReader(dbPath)
		defer reader.Close()

		tableName := recording.TableName(seriesName)
		reader.MapTable(tableName, recording.SeriesPoint{})

		rows, _, err := reader.Query(
			context.Background(), tableName,
			recording.QueryParams{OrderBy: "Step ASC, Slot ASC"})
		if err != nil {
			log.Fatalf("Error reading series %s: %v", seriesName, err)
		}

		writer := csv.NewWriter(os.Stdout)
		mustWrite(writer, []string{"step", "slot", "value"})

		for _, row := range rows {
			point := row.(*recording.SeriesPoint)
			mustWrite(writer, []string{
				strconv.Itoa(point.Step),
				strconv.Itoa(point.Slot),
				strconv.FormatFloat(point.Value, 'g', -1, 64),
			})
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			log.Fatalf("Error writing CSV: %v", err)
		}
	},
}

func mustWrite(w *csv.Writer, record []string) {
	if err := w.Write(record); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("db", "run.sqlite3",
		"Path of the recorded run database")
	exportCmd.Flags().String("series", "",
		"Variable name to export, for example Basin.Mouth.Sim")
	_ = exportCmd.MarkFlagRequired("series")
}
