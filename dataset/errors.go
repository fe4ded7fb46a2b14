package dataset

import "github.com/cockroachdb/errors"

var (
	ErrDataDirNotFound   = errors.New("requested data directory does not exist")
	ErrDatasetNotFound   = errors.New("dataset file not found")
	ErrUnknownDataset    = errors.New("dataset name is not recognized")
	ErrUnknownFrequency  = errors.New("unknown aggregation frequency")
	ErrUnknownAggFunc    = errors.New("unknown aggregation function")
	ErrUnsupportedFormat = errors.New("unsupported dataset file format")
	ErrEmptyFile         = errors.New("dataset file has no header row")
	ErrInvalidTime       = errors.New("unable to parse time value")
	ErrBinOutOfRange     = errors.New("time falls outside the aggregation bins")
)
