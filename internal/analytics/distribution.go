package analytics

import "formpulse/internal/util"

// maxTextSamples caps how many free-text answers are retained for inspection.
const maxTextSamples = 5

// OptionCount is one tallied choice value. Values outside the declared
// options still appear here; schema drift is tolerated, not rejected.
type OptionCount struct {
	Value string
	Count int
}

// QuestionDistribution is the per-field tally over all response rows.
// Average is kept unrounded so criterion rollups can weight it precisely;
// display rounding happens at the API edge.
type QuestionDistribution struct {
	Name          string
	QuestionCode  string
	Label         string
	Type          FieldType
	Criterion     string
	TotalAnswered int

	// Scale questions
	ScaleCounts map[int]int
	Average     float64

	// Radio/checkbox questions
	Options       []OptionCount
	TotalSelected int

	// Text questions
	Samples []string
}

// DistributionResult is the questionnaire-level aggregate. AvgScaleOverall is
// the unweighted mean of per-question averages: every scale question counts
// as one vote regardless of how many rows answered it.
type DistributionResult struct {
	Questions                   []QuestionDistribution
	QuestionAverages            map[string]float64
	ScaleAverages               []float64
	AvgScaleOverall             float64
	TotalQuestionsWithCriterion int
	TotalChoiceAnswers          int
	TotalCheckboxAnswers        int
	TotalTextAnswers            int
}

// BuildDistribution tabulates counts and averages for every field over the
// given response rows. Malformed answer values never abort the aggregation;
// they are silently excluded from the relevant tally.
func BuildDistribution(fields []Field, rows []Response) DistributionResult {
	result := DistributionResult{
		Questions:        make([]QuestionDistribution, 0, len(fields)),
		QuestionAverages: make(map[string]float64),
		ScaleAverages:    make([]float64, 0),
	}

	var scaleAvgSum float64
	var scaleQuestions int

	for _, f := range fields {
		q := QuestionDistribution{
			Name:         f.Name,
			QuestionCode: f.QuestionCode,
			Label:        f.Label,
			Type:         f.Type,
			Criterion:    f.Criterion,
		}
		if f.Criterion != "" {
			result.TotalQuestionsWithCriterion++
		}

		switch f.Type {
		case FieldScale:
			q.ScaleCounts = map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
			var sum float64
			for _, row := range rows {
				v, ok := scaleValue(row.Answers[f.Name])
				if !ok {
					continue
				}
				q.ScaleCounts[int(v)]++
				q.TotalAnswered++
				sum += v
			}
			if q.TotalAnswered > 0 {
				q.Average = sum / float64(q.TotalAnswered)
			}
			scaleAvgSum += q.Average
			scaleQuestions++
			result.QuestionAverages[f.Name] = util.Round2(q.Average)
			result.ScaleAverages = append(result.ScaleAverages, util.Round2(q.Average))

		case FieldRadio, FieldCheckbox:
			counts := make(map[string]int, len(f.Options))
			order := make([]string, 0, len(f.Options))
			for _, opt := range f.Options {
				counts[opt] = 0
				order = append(order, opt)
			}
			for _, row := range rows {
				values := answerStrings(row.Answers[f.Name])
				if len(values) == 0 {
					continue
				}
				q.TotalAnswered++
				for _, v := range values {
					if _, known := counts[v]; !known {
						order = append(order, v)
					}
					counts[v]++
					q.TotalSelected++
				}
			}
			q.Options = make([]OptionCount, 0, len(order))
			for _, v := range order {
				q.Options = append(q.Options, OptionCount{Value: v, Count: counts[v]})
			}
			if f.Type == FieldRadio {
				result.TotalChoiceAnswers += q.TotalAnswered
			} else {
				result.TotalCheckboxAnswers += q.TotalSelected
			}

		case FieldText:
			for _, row := range rows {
				s := stringifyScalar(row.Answers[f.Name])
				if s == "" {
					continue
				}
				q.TotalAnswered++
				if len(q.Samples) < maxTextSamples {
					q.Samples = append(q.Samples, s)
				}
			}
			result.TotalTextAnswers += q.TotalAnswered
		}

		result.Questions = append(result.Questions, q)
	}

	if scaleQuestions > 0 {
		result.AvgScaleOverall = scaleAvgSum / float64(scaleQuestions)
	}
	return result
}
