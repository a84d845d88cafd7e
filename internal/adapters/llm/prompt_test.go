package llm

import (
	"strings"
	"testing"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

func TestAnalysisPromptsCarryMandatoryClauses(t *testing.T) {
	cases := []struct {
		category   domain.AnalysisCategory
		scope      string
		disclaimer string
	}{
		{domain.CategorySoilHealth, "soil health", "Consult with an Agricultural Expert"},
		{domain.CategoryPestDisease, "crop health", "Consult with an Agricultural Expert"},
		{domain.CategoryWeather, "weather patterns", "Consult with a Climate Expert"},
	}

	for _, tc := range cases {
		prompt := AnalysisPrompt(tc.category)
		if !strings.Contains(prompt, "Only respond if the image pertains to "+tc.scope) {
			t.Errorf("%s prompt is missing its scope restriction", tc.category)
		}
		if !strings.Contains(prompt, "Unable to be determined based on the provided image") {
			t.Errorf("%s prompt is missing the undeterminable-aspects policy", tc.category)
		}
		if !strings.Contains(prompt, tc.disclaimer) {
			t.Errorf("%s prompt is missing its disclaimer", tc.category)
		}
	}
}

func TestAnalysisPromptsAreDistinct(t *testing.T) {
	soil := AnalysisPrompt(domain.CategorySoilHealth)
	pest := AnalysisPrompt(domain.CategoryPestDisease)
	weather := AnalysisPrompt(domain.CategoryWeather)

	if soil == pest || soil == weather || pest == weather {
		t.Fatal("each category must have its own instruction template")
	}
}
