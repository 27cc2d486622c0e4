// Package store exports sweep results to JSON and CSV.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SweepPoint is one evaluated configuration in a sweep.
type SweepPoint struct {
	Q                float64 `json:"q"`
	TipX             float64 `json:"tip_x"`
	TipY             float64 `json:"tip_y"`
	PositionComputes uint64  `json:"position_computes"`
	VelocityComputes uint64  `json:"velocity_computes"`
}

// SweepData is a full sweep: host description plus evaluated points.
type SweepData struct {
	Model     string       `json:"model"`
	Preset    string       `json:"preset,omitempty"`
	StateSize int          `json:"state_size"`
	Discrete  bool         `json:"discrete"`
	Entries   []string     `json:"cache_entries"`
	Points    []SweepPoint `json:"points"`
}

func ExportJSON(path string, data *SweepData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, data)
}

func ExportJSONStdout(data *SweepData) error {
	return writeJSON(os.Stdout, data)
}

func writeJSON(w io.Writer, data *SweepData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(path string, data *SweepData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"q", "tip_x", "tip_y", "position_computes", "velocity_computes"}); err != nil {
		return err
	}
	for _, p := range data.Points {
		row := []string{
			fmt.Sprintf("%.9g", p.Q),
			fmt.Sprintf("%.9g", p.TipX),
			fmt.Sprintf("%.9g", p.TipY),
			fmt.Sprintf("%d", p.PositionComputes),
			fmt.Sprintf("%d", p.VelocityComputes),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
