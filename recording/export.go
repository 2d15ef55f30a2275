package recording

import (
	"fmt"
	"strings"

	"github.com/hydrosim/hydronet/sim"
)

// A SeriesPoint is one recorded value of one variable: the step index, the
// row-major slot within the per-step shape, and the value itself.
type SeriesPoint struct {
	Step  int
	Slot  int
	Value float64
}

// A RunEntry describes one exported run.
type RunEntry struct {
	RunID   string
	Horizon int
}

// ExportRun dumps every series of a run into the recorder, one table per
// variable plus a runs table. Call it after the last step and before
// Finish, while the series backends are still open.
func ExportRun(rec DataRecorder, runner *sim.StepRunner) error {
	rec.CreateTable("runs", RunEntry{})
	rec.InsertData("runs", RunEntry{
		RunID:   runner.ID(),
		Horizon: runner.Horizon(),
	})

	for _, v := range runner.Variables() {
		tableName := TableName(v.Name())
		rec.CreateTable(tableName, SeriesPoint{})

		for step := 0; step < runner.Horizon(); step++ {
			vals, err := v.Read(step)
			if err != nil {
				return fmt.Errorf("exporting %s: %w", v.Name(), err)
			}

			for slot, val := range vals {
				rec.InsertData(tableName, SeriesPoint{
					Step:  step,
					Slot:  slot,
					Value: val,
				})
			}
		}
	}

	rec.Flush()

	return nil
}

// TableName converts a hierarchical variable name into a SQLite table name.
func TableName(variableName string) string {
	replacer := strings.NewReplacer(".", "_", "[", "_", "]", "")
	return replacer.Replace(variableName)
}
