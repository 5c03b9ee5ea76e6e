package models

// ChartRequest selects one series and a trailing window.
type ChartRequest struct {
	Series string `param:"series" validate:"required"`
	Range  string `query:"range" default:"30d" validate:"oneof=7d 30d 90d all"`
}

// CompareRequest selects two series to align on a shared timeline.
type CompareRequest struct {
	A     string `query:"a" validate:"required"`
	B     string `query:"b" validate:"required,nefield=A"`
	Range string `query:"range" default:"30d" validate:"oneof=7d 30d 90d all"`
}

// RefreshRequest forces a refetch of one series.
type RefreshRequest struct {
	Series string `param:"series" validate:"required"`
}
