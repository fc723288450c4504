package analytics

import (
	"fmt"
	"time"
)

// Confidence is the data-quality tier attached to analytics output.
type Confidence string

const (
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
	ConfidenceUnknown Confidence = "unknown"
)

// Sample-size thresholds for the derived confidence tier.
const (
	confidenceHighSampleSize   = 150
	confidenceMediumSampleSize = 50
)

// Fact list caps: the dashboard shows fewer lines than the LLM prompt tail.
const (
	FactLimitDashboard = 4
	FactLimitPrompt    = 6

	minFacts = 3
)

// Known warning codes. Unrecognized codes are preserved as opaque strings.
const (
	WarningLowSampleSize       = "low_sample_size"
	WarningSegmentFiltered     = "segment_filtered"
	WarningDateRangeNarrow     = "date_range_narrow"
	WarningStaleLastSubmission = "stale_last_submission"
	WarningAnalysisUnavailable = "analysis_unavailable"
)

// DeriveConfidence returns the explicit upstream tier when one is supplied,
// otherwise derives the tier from sample size. Callers across the system
// must use this single implementation so the fallback stays consistent.
func DeriveConfidence(explicit string, sampleSize int) Confidence {
	switch Confidence(explicit) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh, ConfidenceUnknown:
		return Confidence(explicit)
	}
	switch {
	case sampleSize >= confidenceHighSampleSize:
		return ConfidenceHigh
	case sampleSize >= confidenceMediumSampleSize:
		return ConfidenceMedium
	case sampleSize > 0:
		return ConfidenceLow
	default:
		return ConfidenceUnknown
	}
}

// CriteriaHighlight points at the best or worst criterion for display.
type CriteriaHighlight struct {
	Criterion string
	AvgScale  float64
}

// GroundingInput collects the upstream aggregates the grounding payload is
// derived from.
type GroundingInput struct {
	SampleSize         int
	ExplicitConfidence string
	Warnings           []string
	AvgScaleOverall    float64
	LastSubmittedAt    *time.Time
	Criteria           []CriteriaSummaryEntry
	Segment            SegmentSummary
}

// GroundingPayload is the derived, read-only snapshot consumed by the
// dashboard renderer and the LLM prompt builder.
type GroundingPayload struct {
	Available       bool
	SampleSize      int
	Confidence      Confidence
	Warnings        []string
	AvgScaleOverall float64
	LastSubmittedAt *time.Time
	TopCriterion    *CriteriaHighlight
	BottomCriterion *CriteriaHighlight
	TotalDimensions int
	TotalBuckets    int
	Facts           []string
}

// BuildGroundingPayload derives the confidence tier, warning passthrough and
// natural-language facts from the aggregates. factLimit is FactLimitDashboard
// or FactLimitPrompt depending on the consumer.
func BuildGroundingPayload(in GroundingInput, factLimit int) GroundingPayload {
	p := GroundingPayload{
		SampleSize:      in.SampleSize,
		Confidence:      DeriveConfidence(in.ExplicitConfidence, in.SampleSize),
		Warnings:        append([]string(nil), in.Warnings...),
		AvgScaleOverall: in.AvgScaleOverall,
		LastSubmittedAt: in.LastSubmittedAt,
		TotalDimensions: in.Segment.TotalDimensions,
	}
	for _, d := range in.Segment.Dimensions {
		p.TotalBuckets += len(d.Buckets)
	}
	p.TopCriterion, p.BottomCriterion = criteriaHighlights(in.Criteria)

	// "Available" means there is something to say, not strictly that rows
	// exist.
	p.Available = in.SampleSize > 0 ||
		in.AvgScaleOverall > 0 ||
		in.LastSubmittedAt != nil ||
		len(in.Criteria) > 0 ||
		in.Segment.TotalDimensions > 0

	p.Facts = buildFacts(p, factLimit)
	return p
}

func criteriaHighlights(criteria []CriteriaSummaryEntry) (top, bottom *CriteriaHighlight) {
	for _, c := range criteria {
		if c.TotalScaleAnswered == 0 {
			continue
		}
		if top == nil || c.AvgScale > top.AvgScale {
			top = &CriteriaHighlight{Criterion: c.Criterion, AvgScale: c.AvgScale}
		}
		if bottom == nil || c.AvgScale < bottom.AvgScale {
			bottom = &CriteriaHighlight{Criterion: c.Criterion, AvgScale: c.AvgScale}
		}
	}
	if top != nil && bottom != nil && top.Criterion == bottom.Criterion {
		bottom = nil
	}
	return top, bottom
}

// buildFacts assembles the fact lines in fixed priority order, then backfills
// to the minimum evidentiary floor when the data is near-empty.
func buildFacts(p GroundingPayload, factLimit int) []string {
	facts := make([]string, 0, factLimit)

	if p.AvgScaleOverall > 0 {
		facts = append(facts, fmt.Sprintf("Rata-rata skor keseluruhan = %.2f dari 5", p.AvgScaleOverall))
	}
	if p.TopCriterion != nil {
		facts = append(facts, fmt.Sprintf("Kriteria tertinggi = %s (rata-rata %.2f)",
			p.TopCriterion.Criterion, p.TopCriterion.AvgScale))
	}
	if p.BottomCriterion != nil {
		facts = append(facts, fmt.Sprintf("Kriteria terendah = %s (rata-rata %.2f)",
			p.BottomCriterion.Criterion, p.BottomCriterion.AvgScale))
	}
	if p.TotalDimensions > 0 {
		facts = append(facts, fmt.Sprintf("Segmentasi tersedia = %d dimensi dengan %d bucket",
			p.TotalDimensions, p.TotalBuckets))
	}
	lastLine := "Respons terakhir = belum ada"
	if p.LastSubmittedAt != nil {
		lastLine = fmt.Sprintf("Respons terakhir = %s", p.LastSubmittedAt.Format("2006-01-02"))
		facts = append(facts, lastLine)
	}

	if len(facts) < minFacts {
		backfill := []string{
			fmt.Sprintf("N respons = %d", p.SampleSize),
			fmt.Sprintf("Confidence data = %s", p.Confidence),
			lastLine,
		}
		for _, line := range backfill {
			if len(facts) >= minFacts {
				break
			}
			if !containsFact(facts, line) {
				facts = append(facts, line)
			}
		}
	}

	if len(facts) > factLimit {
		facts = facts[:factLimit]
	}
	return facts
}

func containsFact(facts []string, line string) bool {
	for _, f := range facts {
		if f == line {
			return true
		}
	}
	return false
}
