package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"formpulse/internal/analytics"
)

func samplePayload() analytics.GroundingPayload {
	return analytics.GroundingPayload{
		Available:  true,
		SampleSize: 180,
		Confidence: analytics.ConfidenceHigh,
		Warnings:   []string{analytics.WarningSegmentFiltered},
		Facts: []string{
			"Rata-rata skor keseluruhan = 4.20 dari 5",
			"Kriteria tertinggi = Akademik (rata-rata 4.50)",
			"Kriteria terendah = Fasilitas (rata-rata 3.00)",
			"Segmentasi tersedia = 2 dimensi dengan 5 bucket",
		},
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt("Survei Kepuasan Sekolah", samplePayload())

	assert.Contains(t, prompt, "Judul kuesioner: Survei Kepuasan Sekolah")
	assert.Contains(t, prompt, "ringkasan naratif singkat")
	assert.Contains(t, prompt, "Instruksi Wajib Grounding:")
}

func TestBuildGroundingPromptTail(t *testing.T) {
	t.Run("renders headers and facts", func(t *testing.T) {
		tail := BuildGroundingPromptTail(samplePayload())

		assert.Contains(t, tail, "Instruksi Wajib Grounding:\n")
		assert.Contains(t, tail, "penanda [B1], [B2], atau [B3]")
		assert.Contains(t, tail, "Data Grounding Ringkas:\n")
		assert.Contains(t, tail, "sample_size = 180\n")
		assert.Contains(t, tail, "confidence = high\n")
		assert.Contains(t, tail, "warnings = segment_filtered\n")
		assert.Contains(t, tail, "fact_1 = Rata-rata skor keseluruhan = 4.20 dari 5\n")
		assert.Contains(t, tail, "fact_4 = Segmentasi tersedia = 2 dimensi dengan 5 bucket\n")
		assert.NotContains(t, tail, "Catatan: tingkat keyakinan")
	})

	t.Run("no warnings renders a dash", func(t *testing.T) {
		p := samplePayload()
		p.Warnings = nil
		tail := BuildGroundingPromptTail(p)
		assert.Contains(t, tail, "warnings = -\n")
	})

	t.Run("facts cap at the prompt limit", func(t *testing.T) {
		p := samplePayload()
		p.Facts = make([]string, analytics.FactLimitPrompt+2)
		for i := range p.Facts {
			p.Facts[i] = "fakta"
		}
		tail := BuildGroundingPromptTail(p)
		assert.Equal(t, analytics.FactLimitPrompt, strings.Count(tail, "fact_"))
	})

	t.Run("low confidence adds the caveat", func(t *testing.T) {
		p := samplePayload()
		p.SampleSize = 12
		p.Confidence = analytics.ConfidenceLow
		tail := BuildGroundingPromptTail(p)
		assert.Contains(t, tail, "Catatan: tingkat keyakinan data low.")
	})

	t.Run("unknown confidence adds the caveat", func(t *testing.T) {
		p := samplePayload()
		p.SampleSize = 0
		p.Confidence = analytics.ConfidenceUnknown
		tail := BuildGroundingPromptTail(p)
		assert.Contains(t, tail, "Catatan: tingkat keyakinan data unknown.")
	})
}

func TestEnsureEvidenceBlock(t *testing.T) {
	p := samplePayload()

	t.Run("compliant text passes through untouched", func(t *testing.T) {
		text := "Skor rata-rata 4.20 menunjukkan kepuasan tinggi [B1]. Bukti data mendukung kesimpulan ini."
		assert.Equal(t, text, EnsureEvidenceBlock(text, p))
	})

	t.Run("missing marker appends the block", func(t *testing.T) {
		text := "Hasil kuesioner menunjukkan kepuasan 4.20 berdasarkan bukti data."
		got := EnsureEvidenceBlock(text, p)

		assert.Contains(t, got, "\n\nBukti data:\n")
		assert.Contains(t, got, "[B1] Rata-rata skor keseluruhan = 4.20 dari 5\n")
		assert.Contains(t, got, "[B2] Kriteria tertinggi = Akademik (rata-rata 4.50)\n")
		assert.Contains(t, got, "[B3] Kriteria terendah = Fasilitas (rata-rata 3.00)\n")
		// Only three markers exist, so the fourth fact is dropped.
		assert.NotContains(t, got, "Segmentasi tersedia")
	})

	t.Run("missing digits appends the block", func(t *testing.T) {
		text := "Kepuasan responden tergolong baik [B1] menurut bukti data."
		got := EnsureEvidenceBlock(text, p)
		assert.Contains(t, got, "Bukti data:\n[B1]")
	})

	t.Run("missing bukti mention appends the block", func(t *testing.T) {
		text := "Skor 4.20 tergolong tinggi [B1]."
		got := EnsureEvidenceBlock(text, p)
		assert.Contains(t, got, "\n\nBukti data:\n")
	})

	t.Run("empty facts fall back to the sample size line", func(t *testing.T) {
		empty := analytics.GroundingPayload{SampleSize: 0}
		got := EnsureEvidenceBlock("Ringkasan tanpa angka.", empty)
		assert.Contains(t, got, "[B1] N respons = 0\n")
	})
}
