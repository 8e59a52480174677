package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/san-kum/spinlattice/internal/sim"
)

// WriteTable writes the whitespace delimited spin table:
//
//	Time     Energy        Magnetisation
//	101      -4512.0       1830.0
func WriteTable(w io.Writer, series *sim.Series) error {
	bw := bufio.NewWriter(w)
	cols := series.Columns()
	fmt.Fprintln(bw, tableHeader(cols))

	times := series.Times()
	values := make([][]float64, len(cols))
	for k := range cols {
		values[k] = series.Values(k)
	}
	for i, t := range times {
		fmt.Fprintf(bw, "%-5d", t)
		for k := range cols {
			sep := "       "
			if k == 0 {
				sep = "    "
			}
			fmt.Fprintf(bw, "%s%.1f", sep, values[k][i])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func tableHeader(cols []string) string {
	if slices.Equal(cols, []string{"Energy", "Magnetisation"}) {
		return "Time     Energy        Magnetisation"
	}
	return strings.Join(append([]string{"Time"}, cols...), "     ")
}

// WriteCSV writes the series as comma separated values with a t column.
func WriteCSV(w io.Writer, series *sim.Series) error {
	cw := csv.NewWriter(w)
	cols := series.Columns()
	if err := cw.Write(append([]string{"t"}, cols...)); err != nil {
		return err
	}

	times := series.Times()
	values := make([][]float64, len(cols))
	for k := range cols {
		values[k] = series.Values(k)
	}
	for i, t := range times {
		rec := []string{strconv.Itoa(t)}
		for k := range cols {
			rec = append(rec, strconv.FormatFloat(values[k][i], 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSeries parses either format written by WriteTable or WriteCSV. The
// first column is the sweep index; the header names the value columns.
func ReadSeries(r io.Reader) (*sim.Series, error) {
	br := bufio.NewReader(r)
	headerLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	headerLine = strings.TrimSpace(headerLine)
	if headerLine == "" {
		return nil, fmt.Errorf("series file has no header")
	}

	if strings.Contains(headerLine, ",") {
		return readCSVSeries(strings.Split(headerLine, ","), br)
	}
	return readTableSeries(strings.Fields(headerLine), br)
}

func readCSVSeries(header []string, r io.Reader) (*sim.Series, error) {
	series := sim.NewSeries(header[1:]...)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	for n, rec := range records {
		if err := appendRecord(series, rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
	}
	return series, nil
}

func readTableSeries(header []string, r io.Reader) (*sim.Series, error) {
	series := sim.NewSeries(header[1:]...)
	sc := bufio.NewScanner(r)
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(header) {
			return nil, fmt.Errorf("line %d: want %d fields, got %d", line, len(header), len(fields))
		}
		if err := appendRecord(series, fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return series, sc.Err()
}

func appendRecord(series *sim.Series, rec []string) error {
	t, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return fmt.Errorf("bad sweep index %q: %w", rec[0], err)
	}
	vals := make([]float64, len(rec)-1)
	for k, field := range rec[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", field, err)
		}
		vals[k] = v
	}
	series.Append(t, vals...)
	return nil
}
