// Command tsforecast lists, aggregates and forecasts the datasets of a data home directory.
package main

import (
	"os"
)

func main() {
	logger := newConsoleLogger(os.Stderr)
	if err := newRootCmd(&logger).Execute(); err != nil {
		logError(logger, err, "command failed")
		os.Exit(1)
	}
}
