package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"formpulse/internal/analytics"
	"formpulse/internal/cache"
	"formpulse/internal/config"
	"formpulse/internal/domain"
	"formpulse/internal/dto"
	"formpulse/internal/logger"
	"formpulse/internal/repository"
	"formpulse/internal/repository/models"
	"formpulse/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const dateLayout = "2006-01-02"

// Warning thresholds for the grounding endpoint.
const (
	narrowDateRange      = 7 * 24 * time.Hour
	staleSubmissionAfter = 30 * 24 * time.Hour
)

// AnalyticsService computes distribution, segmentation and grounding views
// over a questionnaire's response rows.
type AnalyticsService interface {
	GetAnalytics(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.AnalyticsResponse, error)
	GetGrounding(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.GroundingResponse, error)
	// GroundingForPrompt returns the prompt-grade grounding payload together
	// with the questionnaire title. The prompt tail carries more facts than
	// the dashboard view.
	GroundingForPrompt(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*analytics.GroundingPayload, string, error)
}

// analyticsService implements AnalyticsService
type analyticsService struct {
	repo    repository.QuestionnaireRepository
	cache   domain.Cache
	cfg     *config.Config
	sfGroup singleflight.Group
}

// NewAnalyticsService creates a new instance of analyticsService
func NewAnalyticsService(repo repository.QuestionnaireRepository, cache domain.Cache, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

// analyticsInputs is the loaded, normalized raw material of one request.
type analyticsInputs struct {
	questionnaire *models.Questionnaire
	fields        []analytics.Field
	rows          []analytics.Response
}

// GetAnalytics implements AnalyticsService
func (s *analyticsService) GetAnalytics(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.AnalyticsResponse, error) {
	// Unfiltered requests are served from the snapshot cache; any filter or
	// compare parameter makes the result request-specific.
	if s.cache != nil && isCacheableQuery(query) {
		cacheKey := cache.GenerateCacheKey("analytics", "snapshot", questionnaireID, tenantID)

		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var resp dto.AnalyticsResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				logger.Get().Debug("Analytics snapshot cache hit", zap.String("questionnaireID", questionnaireID))
				return &resp, nil
			}
			logger.Get().Warn("Failed to unmarshal cached analytics snapshot, rebuilding", zap.String("cacheKey", cacheKey))
		} else if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Error("Failed to read analytics snapshot from cache", zap.Error(err), zap.String("cacheKey", cacheKey))
		}

		// Concurrent dashboard loads for the same questionnaire collapse
		// into one build.
		res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
			resp, buildErr := s.buildAnalytics(ctx, tenantID, questionnaireID, query)
			if buildErr != nil {
				return nil, buildErr
			}
			if dataBytes, marshalErr := json.Marshal(resp); marshalErr == nil {
				if setErr := s.cache.Set(ctx, cacheKey, string(dataBytes), s.cfg.Analytics.CacheTTL); setErr != nil {
					logger.Get().Error("Failed to cache analytics snapshot", zap.Error(setErr), zap.String("cacheKey", cacheKey))
				}
			}
			return resp, nil
		})
		if err != nil {
			return nil, err
		}
		return res.(*dto.AnalyticsResponse), nil
	}

	return s.buildAnalytics(ctx, tenantID, questionnaireID, query)
}

func (s *analyticsService) buildAnalytics(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.AnalyticsResponse, error) {
	in, err := s.loadInputs(ctx, tenantID, questionnaireID, query)
	if err != nil {
		return nil, err
	}

	analyzedRows := in.rows

	// A dimension alone enters drilldown mode unless the request is a pure
	// comparison over segmentBuckets.
	var segmentFilter *dto.SegmentFilterResponse
	if query.SegmentBucket != "" || (query.SegmentDimensionID != "" && query.SegmentBuckets == "") {
		if err := analytics.ValidateSegmentFilter(query.SegmentDimensionID, query.SegmentBucket); err != nil {
			return nil, err
		}
		filtered, candidates, err := analytics.FilterRows(in.fields, in.rows, query.SegmentDimensionID, query.SegmentBucket)
		if err != nil {
			return nil, err
		}
		analyzedRows = filtered
		segmentFilter = &dto.SegmentFilterResponse{
			DimensionID:    query.SegmentDimensionID,
			Bucket:         query.SegmentBucket,
			FilteredCount:  len(filtered),
			CandidateCount: candidates,
		}
	}

	// Compare mode runs over the candidate rows; unlike filtering it never
	// narrows the rest of the analytics.
	var segmentCompare *dto.SegmentCompareResponse
	if query.SegmentBuckets != "" {
		buckets, err := analytics.ParseSegmentBuckets(query.SegmentBuckets)
		if err != nil {
			return nil, err
		}
		comparison, err := analytics.CompareBuckets(in.fields, in.rows, query.SegmentDimensionID, buckets)
		if err != nil {
			return nil, err
		}
		segmentCompare = toSegmentCompareResponse(comparison)
	}

	dist := analytics.BuildDistribution(in.fields, analyzedRows)
	criteria := analytics.BuildCriteriaSummary(dist.Questions)
	segments := analytics.BuildSegmentSummary(in.fields, analyzedRows, criteria)

	resp := toAnalyticsResponse(dist, criteria, segments, len(analyzedRows))
	resp.SegmentFilter = segmentFilter
	resp.SegmentCompare = segmentCompare

	return resp, nil
}

// GetGrounding implements AnalyticsService
func (s *analyticsService) GetGrounding(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.GroundingResponse, error) {
	payload, _, err := s.buildGroundingPayload(ctx, tenantID, questionnaireID, query, analytics.FactLimitDashboard)
	if err != nil {
		return nil, err
	}
	resp := toGroundingResponse(*payload)
	return &resp, nil
}

// GroundingForPrompt implements AnalyticsService
func (s *analyticsService) GroundingForPrompt(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*analytics.GroundingPayload, string, error) {
	payload, in, err := s.buildGroundingPayload(ctx, tenantID, questionnaireID, query, analytics.FactLimitPrompt)
	if err != nil {
		return nil, "", err
	}
	return payload, in.questionnaire.Title, nil
}

// buildGroundingPayload assembles the grounding snapshot shared by the
// dashboard endpoint and the narrative prompt builder.
func (s *analyticsService) buildGroundingPayload(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery, factLimit int) (*analytics.GroundingPayload, *analyticsInputs, error) {
	in, err := s.loadInputs(ctx, tenantID, questionnaireID, query)
	if err != nil {
		return nil, nil, err
	}

	analyzedRows := in.rows
	segmentFiltered := false
	if query.SegmentBucket != "" || (query.SegmentDimensionID != "" && query.SegmentBuckets == "") {
		if err := analytics.ValidateSegmentFilter(query.SegmentDimensionID, query.SegmentBucket); err != nil {
			return nil, nil, err
		}
		filtered, _, err := analytics.FilterRows(in.fields, in.rows, query.SegmentDimensionID, query.SegmentBucket)
		if err != nil {
			return nil, nil, err
		}
		analyzedRows = filtered
		segmentFiltered = true
	}

	dist := analytics.BuildDistribution(in.fields, analyzedRows)
	criteria := analytics.BuildCriteriaSummary(dist.Questions)
	segments := analytics.BuildSegmentSummary(in.fields, analyzedRows, criteria)

	var lastSubmitted *time.Time
	for _, row := range analyzedRows {
		if lastSubmitted == nil || row.CreatedAt.After(*lastSubmitted) {
			t := row.CreatedAt
			lastSubmitted = &t
		}
	}

	warnings := deriveWarnings(len(analyzedRows), segmentFiltered, lastSubmitted, query)
	payload := analytics.BuildGroundingPayload(analytics.GroundingInput{
		SampleSize:      len(analyzedRows),
		Warnings:        warnings,
		AvgScaleOverall: dist.AvgScaleOverall,
		LastSubmittedAt: lastSubmitted,
		Criteria:        criteria,
		Segment:         segments,
	}, factLimit)

	return &payload, in, nil
}

// loadInputs resolves the questionnaire and loads its field schema and
// response rows in parallel. The row count is bounded by configuration.
func (s *analyticsService) loadInputs(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*analyticsInputs, error) {
	q, err := s.repo.GetQuestionnaire(ctx, tenantID, questionnaireID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questionnaire", err)
	}
	if q == nil {
		return nil, domain.NewQuestionnaireNotFoundError(questionnaireID)
	}

	filter, err := buildResponseFilter(query, s.cfg.Analytics.MaxResponseRows)
	if err != nil {
		return nil, err
	}

	var (
		fieldModels []models.QuestionnaireField
		rowModels   []models.ResponseRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		fieldModels, loadErr = s.repo.GetFields(gctx, q.ID, q.CurrentVersion)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		rowModels, loadErr = s.repo.GetResponses(gctx, tenantID, q.ID, q.CurrentVersion, filter)
		return loadErr
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load analytics inputs", err)
	}

	return &analyticsInputs{
		questionnaire: q,
		fields:        analytics.NormalizeFields(toEngineFields(fieldModels)),
		rows:          toEngineRows(rowModels),
	}, nil
}

// buildResponseFilter translates query parameters into the repository filter.
// The "to" date is extended to the end of its day so the range is inclusive.
func buildResponseFilter(query dto.AnalyticsQuery, maxRows int) (domain.ResponseFilter, error) {
	filter := domain.ResponseFilter{
		RespondentSearch: query.RespondentSearch,
		Limit:            maxRows,
	}
	if query.DateFrom != "" {
		from, err := time.Parse(dateLayout, query.DateFrom)
		if err != nil {
			return filter, domain.NewInvalidInputError("dateFrom must be formatted as YYYY-MM-DD")
		}
		filter.From = &from
	}
	if query.DateTo != "" {
		to, err := time.Parse(dateLayout, query.DateTo)
		if err != nil {
			return filter, domain.NewInvalidInputError("dateTo must be formatted as YYYY-MM-DD")
		}
		endOfDay := to.Add(24*time.Hour - time.Second)
		filter.To = &endOfDay
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, domain.NewInvalidInputError("dateTo must not be before dateFrom")
	}
	return filter, nil
}

// isCacheableQuery reports whether the request is the plain dashboard view
// that every viewer of the questionnaire shares.
func isCacheableQuery(query dto.AnalyticsQuery) bool {
	return query.SegmentDimensionID == "" &&
		query.SegmentBucket == "" &&
		query.SegmentBuckets == "" &&
		query.DateFrom == "" &&
		query.DateTo == "" &&
		query.RespondentSearch == ""
}

// deriveWarnings collects the data-quality warnings surfaced alongside the
// grounding payload.
func deriveWarnings(sampleSize int, segmentFiltered bool, lastSubmitted *time.Time, query dto.AnalyticsQuery) []string {
	var warnings []string

	if sampleSize == 0 {
		warnings = append(warnings, analytics.WarningAnalysisUnavailable)
	} else if analytics.DeriveConfidence("", sampleSize) == analytics.ConfidenceLow {
		warnings = append(warnings, analytics.WarningLowSampleSize)
	}

	if segmentFiltered {
		warnings = append(warnings, analytics.WarningSegmentFiltered)
	}

	if query.DateFrom != "" && query.DateTo != "" {
		from, errFrom := time.Parse(dateLayout, query.DateFrom)
		to, errTo := time.Parse(dateLayout, query.DateTo)
		if errFrom == nil && errTo == nil && to.Sub(from) < narrowDateRange {
			warnings = append(warnings, analytics.WarningDateRangeNarrow)
		}
	}

	if lastSubmitted != nil && time.Since(*lastSubmitted) > staleSubmissionAfter {
		warnings = append(warnings, analytics.WarningStaleLastSubmission)
	}

	return warnings
}

// Engine input conversion

func toEngineFields(fieldModels []models.QuestionnaireField) []analytics.Field {
	fields := make([]analytics.Field, 0, len(fieldModels))
	for _, m := range fieldModels {
		fields = append(fields, analytics.Field{
			Name:        m.Name,
			Type:        analytics.FieldType(m.FieldType),
			Label:       m.Label,
			Criterion:   util.NullStringToString(m.Criterion),
			Options:     append([]string(nil), m.Options...),
			FromLabel:   util.NullStringToString(m.FromLabel),
			ToLabel:     util.NullStringToString(m.ToLabel),
			SegmentRole: analytics.SegmentRole(util.NullStringToString(m.SegmentRole)),
			Sensitive:   m.IsSensitive,
		})
	}
	return fields
}

func toEngineRows(rowModels []models.ResponseRow) []analytics.Response {
	rows := make([]analytics.Response, 0, len(rowModels))
	for _, m := range rowModels {
		rows = append(rows, analytics.Response{
			Answers:    m.Answers,
			Respondent: m.Respondent,
			CreatedAt:  m.CreatedAt,
		})
	}
	return rows
}

// DTO mapping. Display rounding happens here; the engine keeps unrounded
// values internally.

func toAnalyticsResponse(dist analytics.DistributionResult, criteria []analytics.CriteriaSummaryEntry, segments analytics.SegmentSummary, totalResponses int) *dto.AnalyticsResponse {
	resp := &dto.AnalyticsResponse{
		ByQuestion:                  make([]dto.QuestionDistributionResponse, 0, len(dist.Questions)),
		QuestionAverages:            dist.QuestionAverages,
		ScaleAverages:               dist.ScaleAverages,
		CriteriaSummary:             make([]dto.CriteriaSummaryResponse, 0, len(criteria)),
		SegmentSummary:              toSegmentSummaryResponse(segments),
		TotalQuestionsWithCriterion: dist.TotalQuestionsWithCriterion,
		AvgScaleOverall:             util.Round2(dist.AvgScaleOverall),
		TotalChoiceAnswers:          dist.TotalChoiceAnswers,
		TotalCheckboxAnswers:        dist.TotalCheckboxAnswers,
		TotalTextAnswers:            dist.TotalTextAnswers,
		TotalResponses:              totalResponses,
	}

	for _, q := range dist.Questions {
		qr := dto.QuestionDistributionResponse{
			Name:          q.Name,
			QuestionCode:  q.QuestionCode,
			Label:         q.Label,
			Type:          string(q.Type),
			Criterion:     q.Criterion,
			TotalAnswered: q.TotalAnswered,
			ScaleCounts:   q.ScaleCounts,
			Average:       util.Round2(q.Average),
			TotalSelected: q.TotalSelected,
			Samples:       q.Samples,
		}
		for _, o := range q.Options {
			qr.Options = append(qr.Options, dto.OptionCountResponse{Value: o.Value, Count: o.Count})
		}
		resp.ByQuestion = append(resp.ByQuestion, qr)
	}

	for _, c := range criteria {
		resp.CriteriaSummary = append(resp.CriteriaSummary, dto.CriteriaSummaryResponse{
			Criterion:           c.Criterion,
			TotalQuestions:      c.TotalQuestions,
			TotalScaleQuestions: c.TotalScaleQuestions,
			TotalScaleAnswered:  c.TotalScaleAnswered,
			AvgScale:            util.Round2(c.AvgScale),
			QuestionCodes:       c.QuestionCodes,
		})
	}

	return resp
}

func toSegmentSummaryResponse(segments analytics.SegmentSummary) dto.SegmentSummaryResponse {
	resp := dto.SegmentSummaryResponse{
		TotalDimensions: segments.TotalDimensions,
		Dimensions:      make([]dto.SegmentDimensionResponse, 0, len(segments.Dimensions)),
	}
	for _, d := range segments.Dimensions {
		dr := dto.SegmentDimensionResponse{
			ID:                d.ID,
			Kind:              d.Kind,
			Label:             d.Label,
			Metric:            d.Metric,
			DrilldownEligible: d.DrilldownEligible,
			Buckets:           make([]dto.BucketResponse, 0, len(d.Buckets)),
		}
		for _, b := range d.Buckets {
			br := dto.BucketResponse{
				Label:               b.Label,
				Total:               b.Total,
				TotalScaleAnswered:  b.TotalScaleAnswered,
				TotalQuestions:      b.TotalQuestions,
				TotalScaleQuestions: b.TotalScaleQuestions,
			}
			if b.HasScale {
				avg := util.Round2(b.AvgScale)
				br.AvgScale = &avg
			}
			dr.Buckets = append(dr.Buckets, br)
		}
		resp.Dimensions = append(resp.Dimensions, dr)
	}
	return resp
}

func toSegmentCompareResponse(comparison *analytics.SegmentComparison) *dto.SegmentCompareResponse {
	resp := &dto.SegmentCompareResponse{
		DimensionID: comparison.DimensionID,
		Metric:      comparison.Metric,
		Buckets:     make([]dto.CompareBucketResponse, 0, len(comparison.Buckets)),
	}
	for _, b := range comparison.Buckets {
		br := dto.CompareBucketResponse{
			Bucket:             b.Bucket,
			Total:              b.Total,
			TotalScaleAnswered: b.TotalScaleAnswered,
		}
		if b.HasScale {
			avg := util.Round2(b.AvgScale)
			br.AvgScale = &avg
		}
		resp.Buckets = append(resp.Buckets, br)
	}
	return resp
}

func toGroundingResponse(p analytics.GroundingPayload) dto.GroundingResponse {
	resp := dto.GroundingResponse{
		Available:       p.Available,
		SampleSize:      p.SampleSize,
		Confidence:      string(p.Confidence),
		Warnings:        p.Warnings,
		AvgScaleOverall: util.Round2(p.AvgScaleOverall),
		LastSubmittedAt: p.LastSubmittedAt,
		Segment: dto.GroundingSegmentResponse{
			TotalDimensions: p.TotalDimensions,
			TotalBuckets:    p.TotalBuckets,
		},
		Facts: p.Facts,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if p.TopCriterion != nil {
		resp.Criteria.Top = &dto.CriteriaHighlightResponse{
			Criterion: p.TopCriterion.Criterion,
			AvgScale:  util.Round2(p.TopCriterion.AvgScale),
		}
	}
	if p.BottomCriterion != nil {
		resp.Criteria.Bottom = &dto.CriteriaHighlightResponse{
			Criterion: p.BottomCriterion.Criterion,
			AvgScale:  util.Round2(p.BottomCriterion.AvgScale),
		}
	}
	return resp
}
