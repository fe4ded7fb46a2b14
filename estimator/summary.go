package estimator

import (
	"fmt"
	"io"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"text/tabwriter"

	tslog "github.com/aouyang1/go-tsestimator/log"
)

// Summary describes the estimator configuration and, when fitted, the column names,
// null model level and any diagnostics reported by a Summarizer model. The summary is
// also logged at debug level.
func (e *Estimator) Summary() map[string]any {
	summary := map[string]any{
		"model":              e.Name(),
		"state":              e.state.String(),
		ParamScoreFunc:       funcName(e.lossFunc()),
		ParamCoverage:        "none",
		ParamNullModelParams: e.cfg.NullModelParams,
	}
	if e.cfg.Coverage != nil {
		summary[ParamCoverage] = *e.cfg.Coverage
	}
	if e.model != nil {
		for k, v := range e.model.Params() {
			summary[ModelParamPrefix+k] = v
		}
	}
	if e.IsFitted() {
		summary["time_col"] = e.timeCol
		summary["value_col"] = e.valueCol
		if e.nullModel != nil {
			summary["null_model_level"] = e.nullModel.Level()
		}
		if s, ok := e.model.(Summarizer); ok {
			for k, v := range s.Summary() {
				summary[k] = v
			}
		}
	}

	attrs := make([]any, 0, 2*len(summary)+2)
	attrs = append(attrs, tslog.OperationKey, tslog.OperationSummary)
	for _, k := range slices.Sorted(maps.Keys(summary)) {
		attrs = append(attrs, k, summary[k])
	}
	e.logger.Debug("estimator summary", attrs...)
	return summary
}

// SummaryTable writes the summary as an aligned key value table.
func (e *Estimator) SummaryTable(w io.Writer) error {
	summary := e.Summary()

	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tbl, "Estimator:\t%s\n", e.id); err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(summary)) {
		if _, err := fmt.Fprintf(tbl, "  %s\t%v\n", k, summary[k]); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func funcName(f any) string {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	return name[strings.LastIndex(name, ".")+1:]
}
