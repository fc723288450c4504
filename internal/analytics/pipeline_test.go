package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// The full pipeline is pure: identical schema and rows must yield identical
// aggregates on every run, with no dependence on call order or shared state.
func TestPipelineDeterminism(t *testing.T) {
	run := func() (DistributionResult, []CriteriaSummaryEntry, SegmentSummary, GroundingPayload) {
		fields := surveyFields()
		rows := []Response{
			{
				Answers: map[string]interface{}{
					"q1": 5, "q2": 4, "q3": "Kelas 7",
					"q4": []interface{}{"Perpustakaan", "Kantin"}, "q5": "Bagus",
				},
				Respondent: map[string]interface{}{"peran": "Guru"},
			},
			{
				Answers: map[string]interface{}{
					"q1": 3, "q2": 2, "q3": "Kelas 8", "q4": []interface{}{"Kantin"},
				},
				Respondent: map[string]interface{}{"peran": "Siswa"},
			},
			{
				Answers: map[string]interface{}{
					"q1": 4, "q2": 5, "q3": "Kelas 7", "q5": "Perlu perbaikan",
				},
				Respondent: map[string]interface{}{"peran": "Siswa"},
			},
		}

		dist := BuildDistribution(fields, rows)
		criteria := BuildCriteriaSummary(dist.Questions)
		segment := BuildSegmentSummary(fields, rows, criteria)

		last := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
		payload := BuildGroundingPayload(GroundingInput{
			SampleSize:      len(rows),
			AvgScaleOverall: dist.AvgScaleOverall,
			LastSubmittedAt: &last,
			Criteria:        criteria,
			Segment:         segment,
		}, FactLimitPrompt)

		return dist, criteria, segment, payload
	}

	dist1, criteria1, segment1, payload1 := run()
	dist2, criteria2, segment2, payload2 := run()

	assert.Equal(t, dist1, dist2)
	assert.Equal(t, criteria1, criteria2)
	assert.Equal(t, segment1, segment2)
	assert.Equal(t, payload1, payload2)
}
