// Package export writes solver results and reschedule plans to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/flightrecovery/core/model"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v to w as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes v to path, choosing the format from the extension.
// An empty path or "-" writes JSON to stdout.
func WriteFile(path string, v any) error {
	if path == "" || path == "-" {
		return WriteJSON(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = WriteYAML(f, v)
	case ".json":
		err = WriteJSON(f, v)
	default:
		err = fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteReschedulesCSV writes one row per leg with its reschedule and new
// departure time. reschedules is indexed like legs.
func WriteReschedulesCSV(w io.Writer, legs []*model.Leg, reschedules []int) error {
	if len(legs) != len(reschedules) {
		return fmt.Errorf("%d reschedules for %d legs", len(reschedules), len(legs))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"leg_id", "flight_num", "reschedule_min", "dep_time", "new_dep_time"}); err != nil {
		return err
	}
	for i, l := range legs {
		rec := []string{
			strconv.Itoa(l.ID),
			strconv.Itoa(l.FlightNum),
			strconv.Itoa(reschedules[i]),
			strconv.Itoa(l.OrigDepTime),
			strconv.Itoa(l.OrigDepTime + reschedules[i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadReschedules loads a reschedule vector indexed like legs. JSON and YAML
// files hold a solve result with a "reschedules" list; CSV files follow the
// WriteReschedulesCSV layout and are matched by leg id.
func ReadReschedules(path string, legs []*model.Leg) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var r struct {
			Reschedules []int `json:"reschedules"`
		}
		if err := json.NewDecoder(f).Decode(&r); err != nil {
			return nil, err
		}
		out = r.Reschedules
	case ".yaml", ".yml":
		var r struct {
			Reschedules []int `yaml:"reschedules"`
		}
		if err := yaml.NewDecoder(f).Decode(&r); err != nil {
			return nil, err
		}
		out = r.Reschedules
	case ".csv":
		out, err = readCSV(f, legs)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported reschedule format: %s", filepath.Ext(path))
	}
	if len(out) != len(legs) {
		return nil, fmt.Errorf("%d reschedules for %d legs", len(out), len(legs))
	}
	return out, nil
}

func readCSV(r io.Reader, legs []*model.Leg) ([]int, error) {
	index := make(map[int]int, len(legs))
	for i, l := range legs {
		index[l.ID] = i
	}
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty reschedule file")
	}
	out := make([]int, len(legs))
	for n, row := range rows[1:] {
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected at least 3 columns", n+2)
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: leg id: %w", n+2, err)
		}
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("row %d: unknown leg %d", n+2, id)
		}
		if out[i], err = strconv.Atoi(row[2]); err != nil {
			return nil, fmt.Errorf("row %d: minutes: %w", n+2, err)
		}
	}
	return out, nil
}
