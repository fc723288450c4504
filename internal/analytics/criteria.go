package analytics

import "sort"

// NoCriterionLabel is the bucket that collects questions without a criterion.
const NoCriterionLabel = "Tanpa Kriteria"

// CriteriaSummaryEntry is the per-criterion rollup. AvgScale is weighted by
// each question's answered row count, deliberately unlike the questionnaire
// level AvgScaleOverall: rollups reflect volume, the top-line KPI gives every
// question one vote.
type CriteriaSummaryEntry struct {
	Criterion           string
	TotalQuestions      int
	TotalScaleQuestions int
	TotalScaleAnswered  int
	AvgScale            float64
	QuestionCodes       []string
}

// BuildCriteriaSummary groups per-question distributions by criterion and
// accumulates the weighted scale average per group. Output is sorted by
// criterion label ascending; NoCriterionLabel sorts wherever its string falls.
func BuildCriteriaSummary(questions []QuestionDistribution) []CriteriaSummaryEntry {
	type acc struct {
		entry       CriteriaSummaryEntry
		weightedSum float64
		seenCodes   map[string]bool
	}
	groups := make(map[string]*acc)
	order := make([]string, 0)

	for _, q := range questions {
		criterion := q.Criterion
		if criterion == "" {
			criterion = NoCriterionLabel
		}
		g, ok := groups[criterion]
		if !ok {
			g = &acc{
				entry:     CriteriaSummaryEntry{Criterion: criterion},
				seenCodes: make(map[string]bool),
			}
			groups[criterion] = g
			order = append(order, criterion)
		}
		g.entry.TotalQuestions++
		if q.QuestionCode != "" && !g.seenCodes[q.QuestionCode] {
			g.seenCodes[q.QuestionCode] = true
			g.entry.QuestionCodes = append(g.entry.QuestionCodes, q.QuestionCode)
		}
		if q.Type == FieldScale {
			g.entry.TotalScaleQuestions++
			g.entry.TotalScaleAnswered += q.TotalAnswered
			g.weightedSum += q.Average * float64(q.TotalAnswered)
		}
	}

	entries := make([]CriteriaSummaryEntry, 0, len(order))
	for _, criterion := range order {
		g := groups[criterion]
		if g.entry.TotalScaleAnswered > 0 {
			g.entry.AvgScale = g.weightedSum / float64(g.entry.TotalScaleAnswered)
		}
		entries = append(entries, g.entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return compareLabels(entries[i].Criterion, entries[j].Criterion) < 0
	})
	return entries
}
