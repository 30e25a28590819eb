// internal/errors/errors.go
package appErrors

import "fmt"

// ErrConfig reports an invalid run parameter (counts, ranges, policy names).
type ErrConfig struct {
	Field  string
	Value  any
	Reason string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %s", e.Field, e.Value, e.Reason)
}

// NewConfigError is the helper constructor for ErrConfig.
func NewConfigError(field string, value any, reason string) error {
	return &ErrConfig{Field: field, Value: value, Reason: reason}
}

// ErrSampling is returned when a without-replacement sample is larger than
// the population it is drawn from.
type ErrSampling struct {
	Requested  int
	Population int
}

func (e *ErrSampling) Error() string {
	return fmt.Sprintf("cannot sample %d items without replacement from a population of %d", e.Requested, e.Population)
}

func NewSamplingError(requested, population int) error {
	return &ErrSampling{Requested: requested, Population: population}
}

// ErrUndefinedStatistic is returned when a statistic cannot be computed,
// e.g. standardizing a column with zero variance.
type ErrUndefinedStatistic struct {
	Column string
	Reason string
}

func (e *ErrUndefinedStatistic) Error() string {
	return fmt.Sprintf("undefined statistic for column %s: %s", e.Column, e.Reason)
}

func NewUndefinedStatistic(column, reason string) error {
	return &ErrUndefinedStatistic{Column: column, Reason: reason}
}

// ErrSchema reports a table that does not match the expected layout.
type ErrSchema struct {
	Table  string
	Column string
	Reason string
}

func (e *ErrSchema) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("table %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("table %s column %s: %s", e.Table, e.Column, e.Reason)
}

func NewSchemaError(table, column, reason string) error {
	return &ErrSchema{Table: table, Column: column, Reason: reason}
}

// ErrTableNotFound is returned by repositories when a named table was never persisted.
type ErrTableNotFound struct {
	Table string
}

func (e *ErrTableNotFound) Error() string {
	return fmt.Sprintf("table %s not found", e.Table)
}

func NewTableNotFound(table string) error {
	return &ErrTableNotFound{Table: table}
}

// ErrCampaignNotFound is returned when no persisted campaign has the given id.
type ErrCampaignNotFound struct {
	ID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %d not found", e.ID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{ID: id}
}

// ErrStage wraps any failure with the pipeline stage and table it happened in.
type ErrStage struct {
	Stage string
	Table string
	Cause error
}

func (e *ErrStage) Error() string {
	return fmt.Sprintf("stage %s (table %s): %v", e.Stage, e.Table, e.Cause)
}

func (e *ErrStage) Unwrap() error {
	return e.Cause
}

func NewStageError(stage, table string, cause error) error {
	return &ErrStage{Stage: stage, Table: table, Cause: cause}
}
