package types

// AggregateRow is what a backend query returns before derivation: one summed
// metric for one group and one period bucket.
type AggregateRow struct {
	GroupKey     string  `json:"groupKey" gorm:"column:group_key"`
	PeriodBucket Day     `json:"periodBucket" gorm:"column:period_bucket"`
	SumMetric    float64 `json:"sumMetric" gorm:"column:sum_metric"`
	Count        int64   `json:"count" gorm:"column:row_count"`
}

// TrendPoint is one point of a daily or monthly chart series.
type TrendPoint struct {
	Date  Day     `json:"date"`
	Value float64 `json:"value"`
}

// DerivedMetric is a KPI value with its optional baseline. DeltaPercent is nil
// whenever ComparisonValue is nil or zero.
type DerivedMetric struct {
	Value           float64      `json:"value"`
	ComparisonValue *float64     `json:"comparisonValue"`
	DeltaPercent    *float64     `json:"deltaPercent"`
	Trend           []TrendPoint `json:"trend"`
}

// GroupMetric is one row of a drill-down table (platform, brand, city, region...).
type GroupMetric struct {
	Key             string   `json:"key"`
	Value           float64  `json:"value"`
	ComparisonValue *float64 `json:"comparisonValue"`
	DeltaPercent    *float64 `json:"deltaPercent"`
	MTD             float64  `json:"mtd"`
	PrevMTD         float64  `json:"prevMtd"`
	MTDDeltaPercent *float64 `json:"mtdDeltaPercent"`
	YTD             float64  `json:"ytd"`
	LastYear        float64  `json:"lastYear"`
	YoYPercent      *float64 `json:"yoyPercent"`
}
