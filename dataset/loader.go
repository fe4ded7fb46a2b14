// Package dataset loads time series tables stored as CSV or XLSX files under a data home
// directory organized by sampling frequency, and aggregates them to coarser frequencies.
package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-tsestimator/forecast"
	tslog "github.com/aouyang1/go-tsestimator/log"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/xuri/excelize/v2"
)

const (
	DefaultDataHome = "data"

	extCSV  = ".csv"
	extXLSX = ".xlsx"
)

// SubDirs are the frequency directories searched by Inventory and LoadData.
var SubDirs = []string{"minute", "hourly", "daily", "weekly", "monthly"}

// timeLayouts are tried in order when LoadOptions.TimeLayout is not set.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// LoadOptions controls how a table is converted into a frame.
type LoadOptions struct {
	// TimeCol is the header of the time column in the file, defaults to forecast.TimeCol
	TimeCol string

	// TimeLayout is a time.Parse layout. Common layouts are tried when empty.
	TimeLayout string

	// Filter keeps only the rows whose raw cell equals the value for every listed column
	Filter map[string]string

	// Columns restricts the value columns. When empty every column with at least one
	// numeric cell is kept.
	Columns []string
}

func (o LoadOptions) timeCol() string {
	if o.TimeCol == "" {
		return forecast.TimeCol
	}
	return o.TimeCol
}

// Loader reads datasets from a data home directory.
type Loader struct {
	root   string
	logger *slog.Logger
}

// NewLoader returns a loader rooted at dataHome, or DefaultDataHome if empty.
func NewLoader(dataHome string, logger *slog.Logger) *Loader {
	if dataHome == "" {
		dataHome = DefaultDataHome
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{root: dataHome, logger: logger}
}

// Root returns the data home directory.
func (l *Loader) Root() string {
	return l.root
}

// DataHome returns the path of subDir under the data home, which must exist. An empty
// subDir returns the data home itself.
func (l *Loader) DataHome(subDir string) (string, error) {
	dir := filepath.Join(l.root, subDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("requested data directory '%s', %w", dir, ErrDataDirNotFound)
	}
	return dir, nil
}

// DataNames returns the sorted, de-duplicated names of the CSV and XLSX files in path
// without their extension.
func DataNames(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("unable to list data directory '%s', %w", path, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != extCSV && ext != extXLSX {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Inventory returns the sorted names of every dataset across the frequency sub-directories.
// Sub-directories that do not exist are skipped.
func (l *Loader) Inventory() ([]string, error) {
	var names []string
	for _, sub := range SubDirs {
		dir, err := l.DataHome(sub)
		if err != nil {
			continue
		}
		subNames, err := DataNames(dir)
		if err != nil {
			return nil, err
		}
		names = append(names, subNames...)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// find returns the directory holding the named dataset.
func (l *Loader) find(name string) (string, error) {
	for _, sub := range SubDirs {
		dir, err := l.DataHome(sub)
		if err != nil {
			continue
		}
		names, err := DataNames(dir)
		if err != nil {
			return "", err
		}
		if slices.Contains(names, name) {
			return dir, nil
		}
	}
	inventory, err := l.Inventory()
	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("input data name '%s' must be one of [%s], %w",
		name, strings.Join(inventory, ", "), ErrUnknownDataset)
}

// LoadData reads the named dataset from whichever frequency directory holds it and
// optionally aggregates it.
func (l *Loader) LoadData(name string, opts LoadOptions, agg *Aggregation) (*timedataset.Frame, error) {
	dir, err := l.find(name)
	if err != nil {
		return nil, err
	}
	frame, err := l.GetFrame(dir, name, opts)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return frame, nil
	}
	return Aggregate(frame, agg.Freq, agg.Funcs)
}

// GetFrame reads path/name.csv or path/name.xlsx into a frame sorted by time. The time
// column is renamed to forecast.TimeCol.
func (l *Loader) GetFrame(path, name string, opts LoadOptions) (*timedataset.Frame, error) {
	var (
		rows [][]string
		err  error
	)
	csvPath := filepath.Join(path, name+extCSV)
	xlsxPath := filepath.Join(path, name+extXLSX)
	switch {
	case fileExists(csvPath):
		rows, err = readCSV(csvPath)
	case fileExists(xlsxPath):
		rows, err = readXLSX(xlsxPath)
	default:
		available, _ := DataNames(path)
		return nil, fmt.Errorf("given file path '%s' is not found, available datasets in data directory '%s' are [%s], %w",
			filepath.Join(path, name), path, strings.Join(available, ", "), ErrDatasetNotFound)
	}
	if err != nil {
		return nil, err
	}

	frame, err := parseTable(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to parse dataset %s, %w", name, err)
	}
	l.logger.Debug("loaded dataset",
		tslog.OperationKey, tslog.OperationLoad,
		tslog.DatasetKey, name,
		tslog.SamplesKey, frame.Len(),
		tslog.FeaturesKey, len(frame.Columns()),
	)
	return frame, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv %s, %w", path, err)
	}
	return rows, nil
}

// readXLSX returns the cells of the first sheet.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open xlsx %s, %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s of %s, %w", sheets[0], path, err)
	}
	return rows, nil
}

func parseTime(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if layout != "" {
		return time.Parse(layout, s)
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	// spreadsheets may store timestamps as serial day numbers
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidTime)
}

func parseTable(rows [][]string, opts LoadOptions) (*timedataset.Frame, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	header := rows[0]
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, col int) string {
		if col < len(row) {
			return row[col]
		}
		return ""
	}

	timeCol := opts.timeCol()
	timeIdx, ok := index[timeCol]
	if !ok {
		return nil, timedataset.NewDataShapeError("load", timeCol, header)
	}
	for col := range opts.Filter {
		if _, ok := index[col]; !ok {
			return nil, timedataset.NewDataShapeError("load", col, header)
		}
	}

	valueCols := opts.Columns
	explicit := len(valueCols) > 0
	if !explicit {
		for _, h := range header {
			if h = strings.TrimSpace(h); h != timeCol {
				valueCols = append(valueCols, h)
			}
		}
	}
	for _, col := range valueCols {
		if _, ok := index[col]; !ok {
			return nil, timedataset.NewDataShapeError("load", col, header)
		}
	}

	type record struct {
		t    time.Time
		vals []float64
	}
	var records []record
	numeric := make([]bool, len(valueCols))
	for _, row := range rows[1:] {
		keep := true
		for col, want := range opts.Filter {
			if cell(row, index[col]) != want {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}

		t, err := parseTime(cell(row, timeIdx), opts.TimeLayout)
		if err != nil {
			return nil, err
		}
		vals := make([]float64, len(valueCols))
		for j, col := range valueCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell(row, index[col])), 64)
			if err != nil {
				v = math.NaN()
			} else {
				numeric[j] = true
			}
			vals[j] = v
		}
		records = append(records, record{t: t, vals: vals})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].t.Before(records[j].t)
	})

	t := make([]time.Time, len(records))
	for i, r := range records {
		t[i] = r.t
	}
	frame := timedataset.NewFrame(forecast.TimeCol, t)
	for j, col := range valueCols {
		if !explicit && !numeric[j] {
			continue
		}
		vals := make([]float64, len(records))
		for i, r := range records {
			vals[i] = r.vals[j]
		}
		if err := frame.AddColumn(col, vals); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
