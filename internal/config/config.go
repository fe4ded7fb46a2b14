// Package config loads the tsforecast command configuration from defaults, an optional
// config file, TSFORECAST_ prefixed environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/aouyang1/go-tsestimator/dataset"
	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TSFORECAST"

// Config holds the command configuration.
type Config struct {
	DataHome string `mapstructure:"data_home"`
	LogLevel string `mapstructure:"log_level"`

	// Profile is the directory a cpu profile is written to, empty disables profiling
	Profile string `mapstructure:"profile"`

	Forecast ForecastConfig `mapstructure:"forecast"`
}

// ForecastConfig selects the forecaster, its estimator options and the evaluation split.
type ForecastConfig struct {
	Model      string `mapstructure:"model"`
	TimeCol    string `mapstructure:"time_col"`
	TimeLayout string `mapstructure:"time_layout"`
	ValueCol   string `mapstructure:"value_col"`

	// Coverage of the prediction bands, 0 disables bands
	Coverage  float64 `mapstructure:"coverage"`
	ScoreFunc string  `mapstructure:"score_func"`

	// NullStrategy is the null model strategy scores are relative to, empty scores raw loss
	NullStrategy string `mapstructure:"null_strategy"`

	Horizon  int `mapstructure:"horizon"`
	TestSize int `mapstructure:"test_size"`

	WeeklyOrders int      `mapstructure:"weekly_orders"`
	YearlyOrders int      `mapstructure:"yearly_orders"`
	Holidays     []string `mapstructure:"holidays"`

	AutoChangepoints  int  `mapstructure:"auto_changepoints"`
	ChangepointGrowth bool `mapstructure:"changepoint_growth"`
	OutlierPasses     int  `mapstructure:"outlier_passes"`
}

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"data-home":     "data_home",
	"log-level":     "log_level",
	"profile":       "profile",
	"model":         "forecast.model",
	"time-col":      "forecast.time_col",
	"time-layout":   "forecast.time_layout",
	"value-col":     "forecast.value_col",
	"coverage":      "forecast.coverage",
	"score-func":    "forecast.score_func",
	"null-strategy": "forecast.null_strategy",
	"horizon":       "forecast.horizon",
	"test-size":     "forecast.test_size",
	"weekly-orders": "forecast.weekly_orders",
	"yearly-orders": "forecast.yearly_orders",
	"holidays":      "forecast.holidays",

	"auto-changepoints":  "forecast.auto_changepoints",
	"changepoint-growth": "forecast.changepoint_growth",
	"outlier-passes":     "forecast.outlier_passes",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_home", dataset.DefaultDataHome)
	v.SetDefault("log_level", "info")
	v.SetDefault("profile", "")
	v.SetDefault("forecast.model", "naive")
	v.SetDefault("forecast.time_col", forecast.TimeCol)
	v.SetDefault("forecast.time_layout", "")
	v.SetDefault("forecast.value_col", forecast.ValueCol)
	v.SetDefault("forecast.coverage", 0.95)
	v.SetDefault("forecast.score_func", "mse")
	v.SetDefault("forecast.null_strategy", "mean")
	v.SetDefault("forecast.horizon", 0)
	v.SetDefault("forecast.test_size", 0)
	v.SetDefault("forecast.weekly_orders", 3)
	v.SetDefault("forecast.yearly_orders", 0)
	v.SetDefault("forecast.holidays", []string{})
	v.SetDefault("forecast.auto_changepoints", 0)
	v.SetDefault("forecast.changepoint_growth", false)
	v.SetDefault("forecast.outlier_passes", 0)
}

// Load reads the configuration. An empty path skips the config file. Only flags that were
// explicitly set override the file and environment.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("unable to read config file %s, %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.Visit(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("unable to bind flags, %w", bindErr)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config, %w", err)
	}
	return c, nil
}
