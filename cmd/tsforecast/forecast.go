package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/aouyang1/go-tsestimator/dataset"
	"github.com/aouyang1/go-tsestimator/estimator"
	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/aouyang1/go-tsestimator/forecasters/linear"
	"github.com/aouyang1/go-tsestimator/forecasters/naive"
	"github.com/aouyang1/go-tsestimator/internal/config"
	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/nullmodel"
	"github.com/aouyang1/go-tsestimator/plot"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	errUnknownModel    = errors.New("unknown forecaster")
	errInvalidTestSize = errors.New("test size must leave at least one training row")
)

// forecastReport is the json output of the forecast command.
type forecastReport struct {
	Dataset string            `json:"dataset"`
	Score   *float64          `json:"score,omitempty"`
	Summary map[string]any    `json:"summary"`
	Results *forecast.Results `json:"results"`
}

// buildEstimator wires the configured forecaster into an estimator.
func buildEstimator(fc config.ForecastConfig) (*estimator.Estimator, error) {
	loss, err := metrics.LossByName(fc.ScoreFunc)
	if err != nil {
		return nil, err
	}
	opts := []estimator.Option{
		estimator.WithScoreFunc(loss),
		estimator.WithLogger(slog.Default()),
	}
	if fc.Coverage > 0 {
		opts = append(opts, estimator.WithCoverage(fc.Coverage))
	} else {
		opts = append(opts, estimator.WithoutCoverage())
	}
	if fc.NullStrategy != "" {
		opts = append(opts, estimator.WithNullModelParams(map[string]any{
			nullmodel.ParamStrategy: fc.NullStrategy,
		}))
	}

	switch fc.Model {
	case naive.Name:
		return naive.NewEstimator(nullmodel.NewDefaultParams(), opts...)
	case linear.Name:
		return linear.NewEstimator(&linear.Options{
			WeeklyOrders: fc.WeeklyOrders,
			YearlyOrders: fc.YearlyOrders,
			Holidays:     fc.Holidays,

			AutoChangepoints:  fc.AutoChangepoints,
			ChangepointGrowth: fc.ChangepointGrowth,
			OutlierPasses:     fc.OutlierPasses,
		}, opts...)
	}
	return nil, fmt.Errorf("%q must be one of [%s, %s], %w", fc.Model, naive.Name, linear.Name, errUnknownModel)
}

func newForecastCmd(a *app) *cobra.Command {
	var plotPath string
	cmd := &cobra.Command{
		Use:   "forecast NAME",
		Short: "Fit a forecaster on a dataset, score a holdout and forecast a horizon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			fc := a.cfg.Forecast

			frame, err := a.loader().LoadData(name, dataset.LoadOptions{
				TimeCol:    fc.TimeCol,
				TimeLayout: fc.TimeLayout,
				Columns:    []string{fc.ValueCol},
			}, nil)
			if err != nil {
				return err
			}
			n := frame.Len()
			if fc.TestSize < 0 || fc.TestSize >= n {
				return fmt.Errorf("test size %d with %d rows, %w", fc.TestSize, n, errInvalidTestSize)
			}
			train, err := frame.Slice(0, n-fc.TestSize)
			if err != nil {
				return err
			}

			est, err := buildEstimator(fc)
			if err != nil {
				return err
			}
			fitParams := estimator.FitParams{TimeCol: forecast.TimeCol, ValueCol: fc.ValueCol}
			if _, err := est.Fit(train, fitParams); err != nil {
				return err
			}
			a.logger.Info().Str("dataset", name).Str("model", est.Name()).Int("rows", train.Len()).Msg("fit estimator")

			report := forecastReport{Dataset: name}
			if fc.TestSize > 0 {
				test, err := frame.Slice(n-fc.TestSize, n)
				if err != nil {
					return err
				}
				y, err := test.Column(fc.ValueCol)
				if err != nil {
					return err
				}
				score, err := est.Score(test, y)
				if err != nil {
					return err
				}
				if !math.IsNaN(score) {
					report.Score = &score
				}
				a.logger.Info().Float64("score", score).Int("rows", test.Len()).Msg("scored holdout")
			}

			t, err := timedataset.Extend(frame.T, fc.Horizon)
			if err != nil {
				return err
			}
			res, err := est.Predict(timedataset.NewFrame(forecast.TimeCol, t))
			if err != nil {
				return err
			}
			report.Results = res
			report.Summary = est.Summary()

			if plotPath != "" {
				if err := writePlot(plotPath, name, frame, fc.ValueCol, res); err != nil {
					return err
				}
				a.logger.Info().Str("path", plotPath).Msg("wrote forecast plot")
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if err := est.SummaryTable(out); err != nil {
				return err
			}
			if report.Score != nil {
				if _, err := fmt.Fprintf(out, "Score: %.6f\n", *report.Score); err != nil {
					return err
				}
			}
			return res.TablePrint(out, "", "  ")
		},
	}

	flags := cmd.Flags()
	flags.String("model", naive.Name, "Forecaster, one of naive or linear")
	flags.String("time-col", forecast.TimeCol, "Time column of the dataset file")
	flags.String("time-layout", "", "Layout of the time column, common layouts are tried when empty")
	flags.String("value-col", forecast.ValueCol, "Column to forecast")
	flags.Float64("coverage", estimator.DefaultCoverage, "Coverage of the prediction bands, 0 disables bands")
	flags.String("score-func", "mse", fmt.Sprintf("Loss used for scoring, one of %v", metrics.LossNames()))
	flags.String("null-strategy", nullmodel.StrategyMean, "Null model strategy scores are relative to, empty scores the raw loss")
	flags.Int("horizon", 0, "Number of points to forecast past the end of the dataset")
	flags.Int("test-size", 0, "Number of trailing rows held out for scoring")
	flags.Int("weekly-orders", 3, "Weekly Fourier orders of the linear forecaster")
	flags.Int("yearly-orders", 0, "Yearly Fourier orders of the linear forecaster")
	flags.StringSlice("holidays", nil, "US holidays modeled by the linear forecaster, or all")
	flags.Int("auto-changepoints", 0, "Evenly spaced trend changepoints of the linear forecaster")
	flags.Bool("changepoint-growth", false, "Let linear forecaster changepoints shift the trend slope")
	flags.Int("outlier-passes", 0, "Refits of the linear forecaster after dropping outlying rows")
	flags.StringVar(&plotPath, "plot", "", "Write an html chart of the forecast to this path")
	return cmd
}

func writePlot(path, name string, actual *timedataset.Frame, valueCol string, res *forecast.Results) error {
	line, err := plot.LineForecast(name, actual, valueCol, res)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create plot file %s, %w", path, err)
	}
	defer f.Close()
	return plot.RenderPage(f, line)
}
