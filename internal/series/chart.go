package series

import (
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/pkg/util"
)

// LabelFunc formats a timeline instant into a chart label.
type LabelFunc func(time.Time) string

// DayLabel renders the UTC calendar day.
func DayLabel(t time.Time) string { return util.DayKeyUTC(t) }

// InstantLabel renders the full instant; used when two series can land on
// the same day at different offsets.
func InstantLabel(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// BuildPointChart renders one single-valued history into the sink shape.
func BuildPointChart(label, color string, pts []models.DataPoint, lf LabelFunc) models.ChartData {
	labels := make([]string, len(pts))
	data := make([]*float64, len(pts))
	for i, p := range pts {
		labels[i] = lf(p.Timestamp)
		v := float64(p.Count)
		data[i] = &v
	}
	return models.ChartData{
		Labels:   labels,
		Datasets: []models.Dataset{{Label: label, Color: color, Data: data}},
	}
}

// BuildCategoryChart renders a multi-category history as one dataset per
// category plus the total.
func BuildCategoryChart(color string, pts []models.CategoryPoint, lf LabelFunc) models.ChartData {
	labels := make([]string, len(pts))
	low := make([]*float64, len(pts))
	medium := make([]*float64, len(pts))
	high := make([]*float64, len(pts))
	total := make([]*float64, len(pts))
	for i, p := range pts {
		labels[i] = lf(p.Timestamp)
		low[i] = f64(p.Low)
		medium[i] = f64(p.Medium)
		high[i] = f64(p.High)
		total[i] = f64(p.Total)
	}
	return models.ChartData{
		Labels: labels,
		Datasets: []models.Dataset{
			{Label: "Low", Data: low},
			{Label: "Medium", Data: medium},
			{Label: "High", Data: high},
			{Label: "Total", Color: color, Data: total},
		},
	}
}

// BuildCompareChart renders an aligned pair as two datasets on the union
// timeline.
func BuildCompareChart(aLabel, aColor, bLabel, bColor string, al Aligned, lf LabelFunc) models.ChartData {
	labels := make([]string, len(al.Timestamps))
	for i, t := range al.Timestamps {
		labels[i] = lf(t)
	}
	return models.ChartData{
		Labels: labels,
		Datasets: []models.Dataset{
			{Label: aLabel, Color: aColor, Data: al.A},
			{Label: bLabel, Color: bColor, Data: al.B},
		},
	}
}

func f64(v int64) *float64 {
	f := float64(v)
	return &f
}
