package analytics

import (
	"sort"
	"strings"
)

// Dimension kinds and metrics.
const (
	DimensionKindQuestion   = "question"
	DimensionKindRespondent = "respondent"
	DimensionKindCriteria   = "criteria"
	DimensionKindDerived    = "derived"

	MetricAvgScale = "avg_scale"
	MetricCount    = "count"
)

// Stable dimension identifiers.
const (
	DimensionIDCriteria  = "criteria"
	DimensionIDScoreBand = "score_band"

	questionDimensionPrefix   = "question:"
	respondentDimensionPrefix = "respondent:"
)

// Noise-rejection thresholds for discovered dimensions.
const (
	minDistinctBuckets   = 2
	maxDistinctBuckets   = 12
	minAnsweredRows      = 2
	maxTextDistinctRatio = 0.6
)

// Fixed score bands for the derived score_band dimension.
const (
	ScoreBandLow  = "Rendah (<=2.5)"
	ScoreBandMid  = "Sedang (>2.5 - <4)"
	ScoreBandHigh = "Tinggi (>=4)"
)

// Bucket is one value within a segmentation dimension.
type Bucket struct {
	Label              string
	Total              int
	AvgScale           float64
	HasScale           bool
	TotalScaleAnswered int

	// Populated for the criteria dimension only.
	TotalQuestions      int
	TotalScaleQuestions int
}

// Dimension is one discovered way to slice respondents.
type Dimension struct {
	ID                string
	Kind              string
	Label             string
	Metric            string
	DrilldownEligible bool
	Buckets           []Bucket
}

// SegmentSummary is the full set of discovered dimensions.
type SegmentSummary struct {
	TotalDimensions int
	Dimensions      []Dimension
}

// Coverage is the total row count across a dimension's buckets.
func (d Dimension) Coverage() int {
	total := 0
	for _, b := range d.Buckets {
		total += b.Total
	}
	return total
}

// BuildSegmentSummary discovers segmentation dimensions from the field
// schema, the response rows and the criteria rollup. Four families are
// computed independently and concatenated: question fields, respondent
// attributes, the criteria dimension and the derived score-band dimension.
func BuildSegmentSummary(fields []Field, rows []Response, criteria []CriteriaSummaryEntry) SegmentSummary {
	hasScale := HasScaleField(fields)
	rowAvgs := rowScaleAverages(fields, rows)

	dimensions := make([]Dimension, 0)
	dimensions = append(dimensions, buildQuestionDimensions(fields, rows, hasScale, rowAvgs)...)
	dimensions = append(dimensions, buildRespondentDimensions(rows, hasScale, rowAvgs)...)
	if d := buildCriteriaDimension(criteria); d != nil {
		dimensions = append(dimensions, *d)
	}
	if d := buildScoreBandDimension(fields, rowAvgs); d != nil {
		dimensions = append(dimensions, *d)
	}

	return SegmentSummary{
		TotalDimensions: len(dimensions),
		Dimensions:      dimensions,
	}
}

// rowScaleAverage computes the mean of one row's valid 1-5 answers across
// all scale fields. The second return is false when the row has no valid
// scale answer at all.
func rowScaleAverage(fields []Field, row Response) (float64, bool) {
	var sum float64
	var n int
	for _, f := range fields {
		if f.Type != FieldScale {
			continue
		}
		if v, ok := scaleValue(row.Answers[f.Name]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

type rowAverage struct {
	avg float64
	ok  bool
}

func rowScaleAverages(fields []Field, rows []Response) []rowAverage {
	avgs := make([]rowAverage, len(rows))
	for i, row := range rows {
		avgs[i].avg, avgs[i].ok = rowScaleAverage(fields, row)
	}
	return avgs
}

// fieldBucketValues collects the distinct bucket values one row contributes
// to a question dimension: every selected checkbox value, truncated for
// display, deduplicated within the row.
func fieldBucketValues(f Field, row Response) []string {
	values := answerStrings(row.Answers[f.Name])
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = truncateLabel(v)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// respondentBucketValue normalizes one respondent attribute into a single
// bucket value. Array values are joined with ", " before truncation, so a
// multi-valued attribute forms one combined bucket rather than several.
func respondentBucketValue(row Response, key string) (string, bool) {
	raw, ok := row.Respondent[key]
	if !ok {
		return "", false
	}
	var s string
	switch t := raw.(type) {
	case []string:
		parts := make([]string, 0, len(t))
		for _, v := range t {
			if p := strings.TrimSpace(v); p != "" {
				parts = append(parts, p)
			}
		}
		s = strings.Join(parts, ", ")
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, v := range t {
			if p := stringifyScalar(v); p != "" {
				parts = append(parts, p)
			}
		}
		s = strings.Join(parts, ", ")
	default:
		s = stringifyScalar(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return truncateLabel(s), true
}

// scoreBand buckets a row-level average into one of the three fixed bands.
func scoreBand(avg float64) string {
	switch {
	case avg >= 4:
		return ScoreBandHigh
	case avg > 2.5:
		return ScoreBandMid
	default:
		return ScoreBandLow
	}
}

// bucketAccumulator tallies bucket totals and per-bucket scale signal while
// rows stream through a candidate dimension.
type bucketAccumulator struct {
	order        []string
	totals       map[string]int
	scaleSums    map[string]float64
	scaleCounts  map[string]int
	answeredRows int
}

func newBucketAccumulator() *bucketAccumulator {
	return &bucketAccumulator{
		totals:      make(map[string]int),
		scaleSums:   make(map[string]float64),
		scaleCounts: make(map[string]int),
	}
}

func (a *bucketAccumulator) addRow(values []string, rowAvg rowAverage, withScale bool) {
	if len(values) == 0 {
		return
	}
	a.answeredRows++
	for _, v := range values {
		if _, ok := a.totals[v]; !ok {
			a.order = append(a.order, v)
		}
		a.totals[v]++
		if withScale && rowAvg.ok {
			a.scaleSums[v] += rowAvg.avg
			a.scaleCounts[v]++
		}
	}
}

// reject applies the noise-rejection rules shared by the question and
// respondent families. Text candidates additionally face the distinct-ratio
// cap that filters essay-like answers out of the categorical axes.
func (a *bucketAccumulator) reject(isText bool) bool {
	distinct := len(a.order)
	if distinct < minDistinctBuckets || distinct > maxDistinctBuckets {
		return true
	}
	if a.answeredRows < minAnsweredRows {
		return true
	}
	if isText && float64(distinct)/float64(a.answeredRows) > maxTextDistinctRatio {
		return true
	}
	return false
}

// buckets materializes the accumulated tallies, picks the dimension metric
// and sorts the buckets by the metric's sort rule.
func (a *bucketAccumulator) buckets() ([]Bucket, string) {
	out := make([]Bucket, 0, len(a.order))
	metric := MetricCount
	for _, v := range a.order {
		b := Bucket{Label: v, Total: a.totals[v]}
		if n := a.scaleCounts[v]; n > 0 {
			b.AvgScale = a.scaleSums[v] / float64(n)
			b.HasScale = true
			b.TotalScaleAnswered = n
			metric = MetricAvgScale
		}
		out = append(out, b)
	}
	if metric == MetricAvgScale {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].AvgScale != out[j].AvgScale {
				return out[i].AvgScale > out[j].AvgScale
			}
			if out[i].Total != out[j].Total {
				return out[i].Total > out[j].Total
			}
			return compareLabels(out[i].Label, out[j].Label) < 0
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Total != out[j].Total {
				return out[i].Total > out[j].Total
			}
			return compareLabels(out[i].Label, out[j].Label) < 0
		})
	}
	return out, metric
}

// segmentEligible applies the candidate gating for question dimensions.
// Free text is discoverable but never force-enabled by segmentRole.
func segmentEligible(f Field) bool {
	if f.Sensitive || f.SegmentRole == SegmentRoleExclude {
		return false
	}
	switch f.Type {
	case FieldRadio, FieldCheckbox:
		return true
	case FieldText:
		return f.SegmentRole != SegmentRoleDimension
	default:
		return false
	}
}

func buildQuestionDimensions(fields []Field, rows []Response, hasScale bool, rowAvgs []rowAverage) []Dimension {
	dims := make([]Dimension, 0)
	for _, f := range fields {
		if !segmentEligible(f) {
			continue
		}
		acc := newBucketAccumulator()
		for i, row := range rows {
			acc.addRow(fieldBucketValues(f, row), rowAvgs[i], hasScale)
		}
		if acc.reject(f.Type == FieldText) {
			continue
		}
		buckets, metric := acc.buckets()
		dims = append(dims, Dimension{
			ID:                questionDimensionPrefix + f.Name,
			Kind:              DimensionKindQuestion,
			Label:             questionDimensionLabel(f),
			Metric:            metric,
			DrilldownEligible: true,
			Buckets:           buckets,
		})
	}
	sortDimensionsByCoverage(dims)
	return dims
}

func questionDimensionLabel(f Field) string {
	switch {
	case f.QuestionCode != "" && f.Label != "":
		return f.QuestionCode + " - " + f.Label
	case f.Label != "":
		return f.Label
	case f.QuestionCode != "":
		return f.QuestionCode
	default:
		return f.Name
	}
}

func buildRespondentDimensions(rows []Response, hasScale bool, rowAvgs []rowAverage) []Dimension {
	keySet := make(map[string]bool)
	keys := make([]string, 0)
	for _, row := range rows {
		for k := range row.Respondent {
			if !keySet[k] {
				keySet[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	dims := make([]Dimension, 0)
	for _, key := range keys {
		acc := newBucketAccumulator()
		for i, row := range rows {
			if v, ok := respondentBucketValue(row, key); ok {
				acc.addRow([]string{v}, rowAvgs[i], hasScale)
			}
		}
		if acc.reject(false) {
			continue
		}
		buckets, metric := acc.buckets()
		dims = append(dims, Dimension{
			ID:                respondentDimensionPrefix + key,
			Kind:              DimensionKindRespondent,
			Label:             titleCaseKey(key),
			Metric:            metric,
			DrilldownEligible: true,
			Buckets:           buckets,
		})
	}
	sortDimensionsByCoverage(dims)
	return dims
}

// buildCriteriaDimension mirrors the criteria rollup as one dimension.
// Row-level filtering by criterion is not well-defined (a single row answers
// many criteria at once), so it is never drilldown-eligible.
func buildCriteriaDimension(criteria []CriteriaSummaryEntry) *Dimension {
	if len(criteria) == 0 {
		return nil
	}
	buckets := make([]Bucket, 0, len(criteria))
	metric := MetricCount
	for _, c := range criteria {
		b := Bucket{
			Label:               c.Criterion,
			Total:               c.TotalScaleAnswered,
			TotalQuestions:      c.TotalQuestions,
			TotalScaleQuestions: c.TotalScaleQuestions,
		}
		if c.TotalScaleAnswered > 0 {
			b.AvgScale = c.AvgScale
			b.HasScale = true
			b.TotalScaleAnswered = c.TotalScaleAnswered
			metric = MetricAvgScale
		}
		buckets = append(buckets, b)
	}
	return &Dimension{
		ID:                DimensionIDCriteria,
		Kind:              DimensionKindCriteria,
		Label:             "Kriteria",
		Metric:            metric,
		DrilldownEligible: false,
		Buckets:           buckets,
	}
}

// buildScoreBandDimension buckets each row's scale average into the three
// fixed bands. Rows with no valid scale answer are excluded entirely.
func buildScoreBandDimension(fields []Field, rowAvgs []rowAverage) *Dimension {
	if !HasScaleField(fields) {
		return nil
	}
	counts := map[string]int{ScoreBandLow: 0, ScoreBandMid: 0, ScoreBandHigh: 0}
	bucketed := 0
	for _, ra := range rowAvgs {
		if !ra.ok {
			continue
		}
		counts[scoreBand(ra.avg)]++
		bucketed++
	}
	if bucketed == 0 {
		return nil
	}
	return &Dimension{
		ID:                DimensionIDScoreBand,
		Kind:              DimensionKindDerived,
		Label:             "Rentang Skor",
		Metric:            MetricCount,
		DrilldownEligible: true,
		Buckets: []Bucket{
			{Label: ScoreBandLow, Total: counts[ScoreBandLow]},
			{Label: ScoreBandMid, Total: counts[ScoreBandMid]},
			{Label: ScoreBandHigh, Total: counts[ScoreBandHigh]},
		},
	}
}

func sortDimensionsByCoverage(dims []Dimension) {
	sort.SliceStable(dims, func(i, j int) bool {
		ci, cj := dims[i].Coverage(), dims[j].Coverage()
		if ci != cj {
			return ci > cj
		}
		return compareLabels(dims[i].Label, dims[j].Label) < 0
	})
}
