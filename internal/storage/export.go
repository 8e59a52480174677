package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/spinlattice/internal/sim"
)

type ExportData struct {
	Run     *RunMetadata `json:"run"`
	Columns []string     `json:"columns"`
	Times   []int        `json:"times"`
	Values  [][]float64  `json:"values"`
}

// ExportJSON writes a run's metadata together with its full series.
func ExportJSON(w io.Writer, meta *RunMetadata, series *sim.Series) error {
	data := ExportData{
		Run:     meta,
		Columns: series.Columns(),
		Times:   series.Times(),
		Values:  make([][]float64, len(series.Columns())),
	}
	for k := range data.Values {
		data.Values[k] = series.Values(k)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
