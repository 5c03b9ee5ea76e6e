package models

// Dataset is one renderable series. Data entries are nil where the series
// has no observation at the corresponding label.
type Dataset struct {
	Label string     `json:"label"`
	Color string     `json:"color,omitempty"`
	Data  []*float64 `json:"data"`
}

// ChartData is the sink shape every chart consumer receives.
// Invariant: len(Labels) == len(d.Data) for every dataset d.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// SeriesInfo describes one configured series for the catalog endpoint.
type SeriesInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
	Kind        string `json:"kind"`
	Granularity string `json:"granularity"`
}
