package store

import "github.com/yo1233/stock-forecast-analyzer/internal/model"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ string, _ []model.StockForecast) error { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
