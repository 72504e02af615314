package recommend

import (
	"fmt"
	"strings"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// MandatoryDisclosure is appended to every persisted recommendation body.
const MandatoryDisclosure = "This is educational content, not financial advice. Consult a licensed advisor for personalized guidance."

// forbiddenPhrases are shaming language; any occurrence is a critical
// warning shown red in the operator UI.
var forbiddenPhrases = []string{
	"you're overspending",
	"bad habit",
	"poor financial decision",
	"irresponsible",
	"wasteful spending",
	"you should stop",
	"you need to",
}

// empoweringKeywords must appear at least once; their absence is a
// notable warning shown yellow in the operator UI.
var empoweringKeywords = []string{
	"you can",
	"let's",
	"many people",
	"common challenge",
	"opportunity",
	"consider",
	"explore",
}

// ValidateTone checks content against the forbidden-phrase list and the
// empowering-language presence check. Warnings are advisory metadata for
// human reviewers and never block persistence.
func ValidateTone(content string) []domain.ValidationWarning {
	var warnings []domain.ValidationWarning
	lower := strings.ToLower(content)

	for _, phrase := range forbiddenPhrases {
		if strings.Contains(lower, phrase) {
			warnings = append(warnings, domain.ValidationWarning{
				Severity: "critical",
				Type:     "forbidden_phrase",
				Message:  fmt.Sprintf("Contains shaming language: '%s'", phrase),
			})
		}
	}

	empowering := false
	for _, kw := range empoweringKeywords {
		if strings.Contains(lower, kw) {
			empowering = true
			break
		}
	}
	if !empowering {
		warnings = append(warnings, domain.ValidationWarning{
			Severity: "notable",
			Type:     "lacks_empowering_language",
			Message:  "Content lacks empowering tone - no empowering keywords found",
		})
	}

	return warnings
}

// AppendDisclosure appends the mandatory disclosure to content, adding a
// terminal period first when missing.
func AppendDisclosure(content string) string {
	if strings.HasSuffix(strings.TrimSpace(content), ".") {
		return fmt.Sprintf("%s\n\n%s", content, MandatoryDisclosure)
	}
	return fmt.Sprintf("%s.\n\n%s", content, MandatoryDisclosure)
}
