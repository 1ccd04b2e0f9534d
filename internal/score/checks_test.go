package score

import (
	"testing"

	"github.com/aeoscan/aeoscan/internal/model"
)

func TestCheckHeadingHierarchy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		headings  model.HeadingSet
		wantScore float64
	}{
		{
			name:      "clean hierarchy",
			headings:  model.HeadingSet{H1: []string{"a"}, H2: []string{"b"}, H3: []string{"c"}},
			wantScore: 5,
		},
		{
			name:      "h2 without h1",
			headings:  model.HeadingSet{H2: []string{"b"}},
			wantScore: 0,
		},
		{
			name:      "h3 without h2",
			headings:  model.HeadingSet{H1: []string{"a"}, H3: []string{"c"}},
			wantScore: 0,
		},
		{
			name:      "no headings",
			headings:  model.HeadingSet{},
			wantScore: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			score, issues := checkHeadingHierarchy(&model.PageSignals{Headings: tc.headings})
			if score != tc.wantScore {
				t.Errorf("score = %v, want %v", score, tc.wantScore)
			}
			if tc.wantScore < 5 && len(issues) == 0 {
				t.Error("failing check surfaced no issue")
			}
		})
	}
}

func TestCheckTitleOptimalLength(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		title     string
		wantScore float64
	}{
		{name: "optimal", title: "This title is exactly in the optimal range for engines", wantScore: 5},
		{name: "too short", title: "Short", wantScore: 2},
		{name: "empty", title: "", wantScore: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			score, _ := checkTitleOptimalLength(&model.PageSignals{Title: tc.title})
			if score != tc.wantScore {
				t.Errorf("score for %q = %v, want %v", tc.title, score, tc.wantScore)
			}
		})
	}
}

func TestCheckSchemaParseableRatio(t *testing.T) {
	t.Parallel()

	signals := &model.PageSignals{
		SchemaBlocks: []model.SchemaBlock{
			{Raw: "{}", Types: []string{"WebPage"}, Parseable: true},
			{Raw: "{broken", Parseable: false},
		},
	}

	score, issues := checkSchemaParseable(signals)
	if got, want := score, 2.5; got != want {
		t.Errorf("score = %v, want %v", got, want)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if got, want := issues[0].Severity, model.SeverityCritical; got != want {
		t.Errorf("severity = %v, want %v", got, want)
	}
}

func TestCheckImagesHaveAlt(t *testing.T) {
	t.Parallel()

	noImages, issues := checkImagesHaveAlt(&model.PageSignals{})
	if noImages != 5 || len(issues) != 0 {
		t.Errorf("no images: score = %v, issues = %v, want 5 and none", noImages, issues)
	}

	partial, issues := checkImagesHaveAlt(&model.PageSignals{
		Images: model.ImageCounts{Total: 4, WithAlt: 3, WithoutAlt: 1},
	})
	if got, want := partial, 3.75; got != want {
		t.Errorf("partial alt coverage: score = %v, want %v", got, want)
	}
	if len(issues) != 1 {
		t.Errorf("partial alt coverage: got %d issues, want 1", len(issues))
	}
}

func TestCheckFAQSection(t *testing.T) {
	t.Parallel()

	bySchema := &model.PageSignals{
		SchemaBlocks: []model.SchemaBlock{{Raw: "{}", Types: []string{"FAQPage"}, Parseable: true}},
	}
	if score, _ := checkHasFAQSection(bySchema); score != 5 {
		t.Errorf("FAQ schema: score = %v, want 5", score)
	}

	byHeading := &model.PageSignals{
		Headings: model.HeadingSet{H2: []string{"Frequently Asked Questions"}},
	}
	if score, _ := checkHasFAQSection(byHeading); score != 5 {
		t.Errorf("FAQ heading: score = %v, want 5", score)
	}

	without := &model.PageSignals{Headings: model.HeadingSet{H2: []string{"Pricing"}}}
	if score, issues := checkHasFAQSection(without); score != 0 || len(issues) != 1 {
		t.Errorf("no FAQ: score = %v, issues = %d, want 0 and 1", score, len(issues))
	}
}
