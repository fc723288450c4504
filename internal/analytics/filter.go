package analytics

import (
	"fmt"
	"net/url"
	"strings"

	"formpulse/internal/domain"
)

// maxCompareBuckets caps how many buckets one compare request may place side
// by side.
const maxCompareBuckets = 3

// ValidateSegmentFilter checks a drilldown request. Dimension id and bucket
// must be supplied together, and the dimension must support row-level
// filtering: the criteria dimension does not.
func ValidateSegmentFilter(dimensionID, bucket string) error {
	if dimensionID == "" && bucket == "" {
		return nil
	}
	if dimensionID == "" || bucket == "" {
		return domain.NewInvalidSegmentFilterError("segmentDimensionId and segmentBucket must be provided together")
	}
	return validateFilterableDimensionID(dimensionID)
}

func validateFilterableDimensionID(dimensionID string) error {
	if dimensionID == DimensionIDCriteria {
		return domain.NewInvalidSegmentFilterError("the criteria dimension does not support drilldown filtering")
	}
	if dimensionID == DimensionIDScoreBand {
		return nil
	}
	if name := strings.TrimPrefix(dimensionID, questionDimensionPrefix); name != dimensionID && name != "" {
		return nil
	}
	if key := strings.TrimPrefix(dimensionID, respondentDimensionPrefix); key != dimensionID && key != "" {
		return nil
	}
	return domain.NewInvalidSegmentFilterError(fmt.Sprintf("unsupported segment dimension id: %s", dimensionID))
}

// RowBuckets re-derives which buckets a single row belongs to for the given
// dimension, using exactly the membership logic the dimension builder uses.
func RowBuckets(fields []Field, row Response, dimensionID string) []string {
	switch {
	case dimensionID == DimensionIDScoreBand:
		if avg, ok := rowScaleAverage(fields, row); ok {
			return []string{scoreBand(avg)}
		}
		return nil
	case strings.HasPrefix(dimensionID, questionDimensionPrefix):
		name := strings.TrimPrefix(dimensionID, questionDimensionPrefix)
		for _, f := range fields {
			if f.Name == name {
				return fieldBucketValues(f, row)
			}
		}
		return nil
	case strings.HasPrefix(dimensionID, respondentDimensionPrefix):
		key := strings.TrimPrefix(dimensionID, respondentDimensionPrefix)
		if v, ok := respondentBucketValue(row, key); ok {
			return []string{v}
		}
		return nil
	default:
		return nil
	}
}

// FilterRows keeps only the rows whose bucket set for the dimension contains
// the requested bucket. The second return is the original candidate count
// for "N of M" display.
func FilterRows(fields []Field, rows []Response, dimensionID, bucket string) ([]Response, int, error) {
	if dimensionID == "" || bucket == "" {
		return nil, 0, domain.NewInvalidSegmentFilterError("segmentDimensionId and segmentBucket must be provided together")
	}
	if err := validateFilterableDimensionID(dimensionID); err != nil {
		return nil, 0, err
	}
	filtered := make([]Response, 0, len(rows))
	for _, row := range rows {
		for _, b := range RowBuckets(fields, row, dimensionID) {
			if b == bucket {
				filtered = append(filtered, row)
				break
			}
		}
	}
	return filtered, len(rows), nil
}

// ComparisonBucket is the side-by-side metric for one requested bucket.
type ComparisonBucket struct {
	Bucket             string
	Total              int
	AvgScale           float64
	HasScale           bool
	TotalScaleAnswered int
}

// SegmentComparison is the result of compare mode. Unlike filtering,
// comparison never narrows the rest of the analytics.
type SegmentComparison struct {
	DimensionID string
	Metric      string
	Buckets     []ComparisonBucket
}

// CompareBuckets computes the per-bucket metric for up to three buckets of
// one dimension without discarding non-matching rows.
func CompareBuckets(fields []Field, rows []Response, dimensionID string, buckets []string) (*SegmentComparison, error) {
	if len(buckets) == 0 || len(buckets) > maxCompareBuckets {
		return nil, domain.NewInvalidSegmentFilterError(
			fmt.Sprintf("segmentBuckets must contain between 1 and %d entries", maxCompareBuckets))
	}
	if err := validateFilterableDimensionID(dimensionID); err != nil {
		return nil, err
	}

	result := &SegmentComparison{
		DimensionID: dimensionID,
		Metric:      MetricCount,
		Buckets:     make([]ComparisonBucket, 0, len(buckets)),
	}
	for _, want := range buckets {
		cb := ComparisonBucket{Bucket: want}
		var scaleSum float64
		for _, row := range rows {
			member := false
			for _, b := range RowBuckets(fields, row, dimensionID) {
				if b == want {
					member = true
					break
				}
			}
			if !member {
				continue
			}
			cb.Total++
			if avg, ok := rowScaleAverage(fields, row); ok {
				scaleSum += avg
				cb.TotalScaleAnswered++
			}
		}
		if cb.TotalScaleAnswered > 0 {
			cb.AvgScale = scaleSum / float64(cb.TotalScaleAnswered)
			cb.HasScale = true
			result.Metric = MetricAvgScale
		}
		result.Buckets = append(result.Buckets, cb)
	}
	return result, nil
}

// ParseSegmentBuckets splits the comma-joined, percent-encoded segmentBuckets
// query parameter. Individual values are decoded after the split so bucket
// labels containing commas survive the round trip.
func ParseSegmentBuckets(param string) ([]string, error) {
	if strings.TrimSpace(param) == "" {
		return nil, domain.NewInvalidSegmentFilterError("segmentBuckets must not be empty")
	}
	parts := strings.Split(param, ",")
	buckets := make([]string, 0, len(parts))
	for _, p := range parts {
		decoded, err := url.QueryUnescape(p)
		if err != nil {
			return nil, domain.NewInvalidSegmentFilterError(fmt.Sprintf("invalid segmentBuckets encoding: %s", p))
		}
		if decoded = strings.TrimSpace(decoded); decoded != "" {
			buckets = append(buckets, decoded)
		}
	}
	if len(buckets) == 0 || len(buckets) > maxCompareBuckets {
		return nil, domain.NewInvalidSegmentFilterError(
			fmt.Sprintf("segmentBuckets must contain between 1 and %d entries", maxCompareBuckets))
	}
	return buckets, nil
}
