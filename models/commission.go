package models

import "time"

// CommissionBucket is the closed-opportunity commission inside
// [StartDate, EndDate).
type CommissionBucket struct {
	Label     string    `json:"label"`
	Value     float64   `json:"value"`
	Count     int       `json:"count"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// CommissionPeriods groups the three chart series.
type CommissionPeriods struct {
	Week  []CommissionBucket `json:"week"`
	Month []CommissionBucket `json:"month"`
	Year  []CommissionBucket `json:"year"`
}

// Total sums the value of every bucket.
func Total(buckets []CommissionBucket) (float64, int) {
	var value float64
	var count int
	for _, b := range buckets {
		value += b.Value
		count += b.Count
	}
	return value, count
}
