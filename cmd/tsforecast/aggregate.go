package main

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-tsestimator/dataset"
	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var errInvalidAgg = errors.New("aggregation must be formatted as column=function")

// parseAggs converts column=function pairs into an aggregation map.
func parseAggs(pairs []string) (map[string]dataset.AggFunc, error) {
	funcs := make(map[string]dataset.AggFunc, len(pairs))
	for _, p := range pairs {
		col, fn, ok := strings.Cut(p, "=")
		if !ok || col == "" || fn == "" {
			return nil, fmt.Errorf("%q, %w", p, errInvalidAgg)
		}
		funcs[col] = dataset.AggFunc(strings.ToLower(fn))
	}
	return funcs, nil
}

func newAggregateCmd(a *app) *cobra.Command {
	var (
		freq string
		aggs []string
	)
	cmd := &cobra.Command{
		Use:   "aggregate NAME",
		Short: "Resample a dataset to a daily, weekly or monthly frequency and write it as csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			funcs, err := parseAggs(aggs)
			if err != nil {
				return err
			}
			opts := dataset.LoadOptions{
				TimeCol:    a.cfg.Forecast.TimeCol,
				TimeLayout: a.cfg.Forecast.TimeLayout,
			}
			frame, err := a.loader().LoadData(args[0], opts, &dataset.Aggregation{
				Freq:  dataset.Frequency(freq),
				Funcs: funcs,
			})
			if err != nil {
				return err
			}
			a.logger.Info().Str("dataset", args[0]).Str("freq", freq).Int("rows", frame.Len()).Msg("aggregated dataset")
			return writeFrameCSV(cmd, frame)
		},
	}
	cmd.Flags().StringVar(&freq, "freq", string(dataset.FreqDaily), "One of daily, weekly or monthly")
	cmd.Flags().StringSliceVar(&aggs, "agg", nil, "column=function pairs, functions are sum, mean, median, min or max")
	cmd.Flags().String("time-col", forecast.TimeCol, "Time column of the dataset file")
	cmd.Flags().String("time-layout", "", "Layout of the time column, common layouts are tried when empty")
	return cmd
}

func writeFrameCSV(cmd *cobra.Command, frame *timedataset.Frame) error {
	w := csv.NewWriter(cmd.OutOrStdout())
	cols := frame.Columns()
	if err := w.Write(append([]string{frame.TimeCol}, cols...)); err != nil {
		return err
	}
	values := make([][]float64, len(cols))
	for j, col := range cols {
		v, err := frame.Column(col)
		if err != nil {
			return err
		}
		values[j] = v
	}
	for i, t := range frame.T {
		record := make([]string, 0, len(cols)+1)
		record = append(record, t.Format(time.RFC3339))
		for j := range cols {
			record = append(record, strconv.FormatFloat(values[j][i], 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
