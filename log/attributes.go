package log

// Attribute keys shared by every component that logs through slog. Keys are
// hierarchical so that log pipelines can filter on a prefix.
const (
	ModelNameKey   = "model.name"
	EstimatorIDKey = "estimator.id"
	OperationKey   = "ml.operation"

	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	DatasetKey  = "data.name"

	ScoreKey    = "metrics.score"
	NullLossKey = "metrics.null_loss"
	CoverageKey = "preds.coverage"
	CacheHitKey = "cache.hit"

	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// Values used with OperationKey.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSummary = "summary"
	OperationLoad    = "load"
)
