package recommend

import (
	"strings"
	"testing"
)

func TestValidateTone_ForbiddenPhrases(t *testing.T) {
	content := "You're overspending on subscriptions, which is a bad habit. Consider reviewing them."

	warnings := ValidateTone(content)

	critical := 0
	for _, w := range warnings {
		if w.Severity == "critical" {
			critical++
			if w.Type != "forbidden_phrase" {
				t.Errorf("critical warning type = %s, want forbidden_phrase", w.Type)
			}
		}
	}
	if critical != 2 {
		t.Errorf("critical warnings = %d, want 2 (overspending + bad habit)", critical)
	}
}

func TestValidateTone_MissingEmpoweringLanguage(t *testing.T) {
	content := "Review your subscriptions this month."

	warnings := ValidateTone(content)

	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	if warnings[0].Severity != "notable" || warnings[0].Type != "lacks_empowering_language" {
		t.Errorf("warning = %+v, want notable lacks_empowering_language", warnings[0])
	}
}

func TestValidateTone_CleanContent(t *testing.T) {
	content := "Many people find subscription audits helpful. You can explore which services still bring you value."

	if warnings := ValidateTone(content); len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestValidateTone_CaseInsensitive(t *testing.T) {
	warnings := ValidateTone("This is IRRESPONSIBLE. Consider a plan.")

	found := false
	for _, w := range warnings {
		if w.Type == "forbidden_phrase" {
			found = true
		}
	}
	if !found {
		t.Error("forbidden phrase detection must be case-insensitive")
	}
}

func TestAppendDisclosure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"with terminal period", "Consider a savings plan."},
		{"without terminal period", "Consider a savings plan"},
		{"trailing whitespace", "Consider a savings plan.  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendDisclosure(tt.content)
			if !strings.HasSuffix(got, MandatoryDisclosure) {
				t.Errorf("disclosure missing from %q", got)
			}
			if strings.Count(got, MandatoryDisclosure) != 1 {
				t.Errorf("disclosure appended more than once: %q", got)
			}
			body := strings.TrimSuffix(got, "\n\n"+MandatoryDisclosure)
			if !strings.HasSuffix(strings.TrimSpace(body), ".") {
				t.Errorf("body should end with a period, got %q", body)
			}
		})
	}
}

func TestBuildPrompt_AllPersonasCovered(t *testing.T) {
	personas := []string{
		"high_utilization", "variable_income", "subscription_heavy",
		"savings_builder", "wealth_builder", "general_wellness",
	}

	for _, p := range personas {
		prompt := BuildPrompt(p, `{"user_id":"u1"}`)
		if prompt == "" {
			t.Errorf("empty prompt for persona %s", p)
			continue
		}
		if !strings.Contains(prompt, `"user_id":"u1"`) {
			t.Errorf("prompt for %s missing context payload", p)
		}
		if !strings.Contains(prompt, "recommendations") {
			t.Errorf("prompt for %s missing JSON output instructions", p)
		}
	}
}
