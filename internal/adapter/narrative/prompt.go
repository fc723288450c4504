package narrative

import (
	"fmt"
	"strings"

	"formpulse/internal/analytics"
)

// Evidence markers the model is required to cite.
var evidenceMarkers = []string{"[B1]", "[B2]", "[B3]"}

// BuildSummaryPrompt assembles the full prompt for the AI narrative: the
// summary request followed by the mandatory grounding tail.
func BuildSummaryPrompt(questionnaireTitle string, p analytics.GroundingPayload) string {
	var b strings.Builder
	b.WriteString("Anda adalah analis data kuesioner. Tulis ringkasan naratif singkat (maksimal 150 kata) ")
	b.WriteString("tentang hasil kuesioner berikut dalam bahasa Indonesia.\n")
	fmt.Fprintf(&b, "Judul kuesioner: %s\n\n", questionnaireTitle)
	b.WriteString(BuildGroundingPromptTail(p))
	return b.String()
}

// BuildGroundingPromptTail renders the fixed instructional block appended to
// every narrative prompt. The header strings and marker rules are load
// bearing: the soft guard scans generated text for them.
func BuildGroundingPromptTail(p analytics.GroundingPayload) string {
	var b strings.Builder
	b.WriteString("Instruksi Wajib Grounding:\n")
	b.WriteString("1. Setiap klaim harus mengutip bukti data dengan penanda [B1], [B2], atau [B3].\n")
	b.WriteString("2. Gunakan hanya angka yang tercantum pada Data Grounding Ringkas di bawah.\n")
	b.WriteString("3. Jangan membuat angka atau fakta baru di luar data tersebut.\n")
	b.WriteString("\nData Grounding Ringkas:\n")
	fmt.Fprintf(&b, "sample_size = %d\n", p.SampleSize)
	fmt.Fprintf(&b, "confidence = %s\n", p.Confidence)
	warnings := "-"
	if len(p.Warnings) > 0 {
		warnings = strings.Join(p.Warnings, ", ")
	}
	fmt.Fprintf(&b, "warnings = %s\n", warnings)
	facts := p.Facts
	if len(facts) > analytics.FactLimitPrompt {
		facts = facts[:analytics.FactLimitPrompt]
	}
	for i, fact := range facts {
		fmt.Fprintf(&b, "fact_%d = %s\n", i+1, fact)
	}
	if p.Confidence == analytics.ConfidenceLow || p.Confidence == analytics.ConfidenceUnknown {
		fmt.Fprintf(&b, "\nCatatan: tingkat keyakinan data %s. Sampaikan kesimpulan dengan hati-hati dan sebutkan keterbatasan datanya.\n", p.Confidence)
	}
	return b.String()
}

// EnsureEvidenceBlock is the post-hoc soft guard over generated text: the
// narrative must mention "bukti data", carry at least one evidence marker and
// contain at least one digit. When any of these is missing a synthesized
// evidence block built from the same facts is appended.
func EnsureEvidenceBlock(text string, p analytics.GroundingPayload) string {
	lower := strings.ToLower(text)
	hasBukti := strings.Contains(lower, "bukti data")
	hasMarker := false
	for _, m := range evidenceMarkers {
		if strings.Contains(text, m) {
			hasMarker = true
			break
		}
	}
	hasDigit := strings.ContainsAny(text, "0123456789")
	if hasBukti && hasMarker && hasDigit {
		return text
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\nBukti data:\n")
	facts := p.Facts
	if len(facts) > len(evidenceMarkers) {
		facts = facts[:len(evidenceMarkers)]
	}
	if len(facts) == 0 {
		facts = []string{fmt.Sprintf("N respons = %d", p.SampleSize)}
	}
	for i, fact := range facts {
		fmt.Fprintf(&b, "%s %s\n", evidenceMarkers[i], fact)
	}
	return b.String()
}
