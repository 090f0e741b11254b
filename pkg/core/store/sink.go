// Package store persists tuple results: flat CSV files, Postgres tables,
// a markdown/HTML national report and a result cache.
package store

import (
	"context"
	"errors"

	"telecom_subsidy/pkg/models"
)

// Sink receives finished tuple results. Save may be called from several
// goroutines; Close flushes anything buffered.
type Sink interface {
	Save(ctx context.Context, res *models.TupleResult) error
	Close(ctx context.Context) error
}

// MultiSink fans a result out to several sinks in order.
type MultiSink []Sink

// Save writes to every sink and joins their errors.
func (m MultiSink) Save(ctx context.Context, res *models.TupleResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
