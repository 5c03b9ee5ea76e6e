package series

import "ChainPulse/internal/domain/models"

const defaultColor = "chart-neutral"

// Series kinds. Point series chart one value per instant; category series
// chart a low/medium/high breakdown plus the total.
const (
	KindPoint    = "point"
	KindCategory = "category"
)

// Catalog is a read-only lookup from series key to display metadata. It is
// built once from configuration and handed to chart consumers instead of
// letting them capture shared mutable state.
type Catalog struct {
	infos map[string]models.SeriesInfo
	order []string
}

// NewCatalog builds a catalog preserving the configured order.
func NewCatalog(infos []models.SeriesInfo) *Catalog {
	c := &Catalog{infos: make(map[string]models.SeriesInfo, len(infos))}
	for _, si := range infos {
		c.infos[si.Key] = si
		c.order = append(c.order, si.Key)
	}
	return c
}

// DisplayName returns the configured display name, or the key itself.
func (c *Catalog) DisplayName(key string) string {
	if si, ok := c.infos[key]; ok && si.DisplayName != "" {
		return si.DisplayName
	}
	return key
}

// Color returns the configured color token, or a neutral default.
func (c *Catalog) Color(key string) string {
	if si, ok := c.infos[key]; ok && si.Color != "" {
		return si.Color
	}
	return defaultColor
}

// Granularity returns the configured dedupe granularity, defaulting to daily.
func (c *Catalog) Granularity(key string) Granularity {
	if si, ok := c.infos[key]; ok && Granularity(si.Granularity) == Weekly {
		return Weekly
	}
	return Daily
}

// Kind returns the configured series kind, defaulting to point.
func (c *Catalog) Kind(key string) string {
	if si, ok := c.infos[key]; ok && si.Kind == KindCategory {
		return KindCategory
	}
	return KindPoint
}

// Has reports whether the key names a configured series.
func (c *Catalog) Has(key string) bool {
	_, ok := c.infos[key]
	return ok
}

// List returns all series in configured order.
func (c *Catalog) List() []models.SeriesInfo {
	out := make([]models.SeriesInfo, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.infos[k])
	}
	return out
}
