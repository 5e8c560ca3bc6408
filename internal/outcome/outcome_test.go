package outcome

import (
	"errors"
	"testing"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/questionnaire"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/tally"
)

// agreed builds results for two agents who gave mirrored accounts.
func agreed(t *testing.T, yours, theirs questionnaire.Answers) []tally.Result {
	t.Helper()
	results := tally.DefaultRules.Evaluate(catalog.Default(), yours, theirs)
	if !tally.AllTally(results) {
		t.Fatalf("fixture does not tally: %+v", results)
	}
	return results
}

func same(a questionnaire.Answers) questionnaire.Answers {
	out := make(questionnaire.Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func assertParagraphs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph %d:\n got %q\nwant %q", i, got[i], want[i])
		}
	}
}

func TestConventionTreeIsValid(t *testing.T) {
	for _, polarity := range []string{"yes", "no"} {
		if err := ConventionTree(polarity).Validate(); err != nil {
			t.Errorf("polarity %s: %v", polarity, err)
		}
	}
}

func TestExclusion(t *testing.T) {
	a := questionnaire.Answers{"article_11": "yes"}
	got, err := ConventionTree("yes").Summarize(agreed(t, a, same(a)))
	if err != nil {
		t.Fatal(err)
	}
	assertParagraphs(t, got, ExclusionParagraph)
}

func TestAccidentalCollision(t *testing.T) {
	tests := []struct {
		yours, theirs string
		want          string
	}{
		{"mine", "other", AccidentalMineParagraph},
		{"other", "mine", AccidentalOtherParagraph},
		{"both", "both", AccidentalBothParagraph},
	}
	for _, tt := range tests {
		t.Run(tt.yours, func(t *testing.T) {
			yours := questionnaire.Answers{"article_11": "no", "article_2": "yes", "article_1": tt.yours}
			theirs := questionnaire.Answers{"article_11": "no", "article_2": "yes", "article_1": tt.theirs}
			got, err := ConventionTree("yes").Summarize(agreed(t, yours, theirs))
			if err != nil {
				t.Fatal(err)
			}
			assertParagraphs(t, got, tt.want)
		})
	}
}

func TestAccidentalMineMineConflicts(t *testing.T) {
	a := questionnaire.Answers{"article_11": "no", "article_2": "yes", "article_1": "mine"}
	results := tally.DefaultRules.Evaluate(catalog.Default(), a, same(a))
	got, err := ConventionTree("yes").Summarize(results)
	if err != nil {
		t.Fatal(err)
	}
	assertParagraphs(t, got, ConflictMessage)
}

func TestAccidentalUnknownDamageFallsBack(t *testing.T) {
	results := []tally.Result{
		{QuestionID: "article_11", YourAnswer: "no", TheirAnswer: "no", Tally: true},
		{QuestionID: "article_2", YourAnswer: "yes", TheirAnswer: "yes", Tally: true},
		{QuestionID: "article_1", YourAnswer: "neither", TheirAnswer: "neither", Tally: true},
	}
	got, err := ConventionTree("yes").Deduce(results)
	if err != nil {
		t.Fatal(err)
	}
	assertParagraphs(t, got, FallbackMessage)
}

func TestFaultBased(t *testing.T) {
	tests := []struct {
		name          string
		yours, theirs string
		want          []string
	}{
		{"mine", "mine", "other", []string{FaultMineParagraph}},
		{"other", "other", "mine", []string{FaultOtherParagraph}},
		{"both", "both", "both", []string{ProportionalParagraph, ThirdPartyCapParagraph, JointLiabilityParagraph}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := questionnaire.Answers{"article_11": "no", "article_1": "both", "article_2": "no", "article_7a": "yes"}
			yours, theirs := same(base), same(base)
			yours["article_3"] = tt.yours
			theirs["article_3"] = tt.theirs

			got, err := ConventionTree("yes").Summarize(agreed(t, yours, theirs))
			if err != nil {
				t.Fatal(err)
			}
			assertParagraphs(t, got, tt.want...)
		})
	}
}

func TestTimeBarPolarity(t *testing.T) {
	tests := []struct {
		polarity   string
		arrestable string
		want       []string
	}{
		{"yes", "yes", []string{TimeBarParagraph}},
		{"yes", "no", []string{ExtensionParagraph, FaultOtherParagraph}},
		{"no", "no", []string{TimeBarParagraph}},
		{"no", "yes", []string{ExtensionParagraph, FaultOtherParagraph}},
	}
	for _, tt := range tests {
		t.Run(tt.polarity+"/"+tt.arrestable, func(t *testing.T) {
			base := questionnaire.Answers{"article_11": "no", "article_1": "mine", "article_2": "no", "article_7a": "no", "article_7b": tt.arrestable}
			yours, theirs := same(base), same(base)
			yours["article_3"] = "other"
			theirs["article_3"] = "mine"
			theirs["article_1"] = "other"

			got, err := ConventionTree(tt.polarity).Summarize(agreed(t, yours, theirs))
			if err != nil {
				t.Fatal(err)
			}
			assertParagraphs(t, got, tt.want...)
		})
	}
}

func TestConflictSkipsDecisionTree(t *testing.T) {
	// A conflicting result set that would fail lookup if the tree ran.
	results := []tally.Result{
		{QuestionID: "article_2", YourAnswer: "yes", TheirAnswer: "no", Tally: false},
	}
	got, err := ConventionTree("yes").Summarize(results)
	if err != nil {
		t.Fatalf("conflict must not be an error: %v", err)
	}
	assertParagraphs(t, got, ConflictMessage)
}

func TestMissingQuestionIsFatal(t *testing.T) {
	results := []tally.Result{
		{QuestionID: "article_11", YourAnswer: "no", TheirAnswer: "no", Tally: true},
	}
	_, err := ConventionTree("yes").Summarize(results)
	var notFound *QuestionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *QuestionNotFoundError, got %v", err)
	}
	if notFound.QuestionID != QuestionAccidental {
		t.Errorf("expected missing %s, got %s", QuestionAccidental, notFound.QuestionID)
	}
}

func TestWalkDetectsLoops(t *testing.T) {
	tree := &Tree{
		Start: "a",
		Steps: map[string]Step{
			"a": {QuestionID: "q", Otherwise: Branch{Next: "b"}},
			"b": {QuestionID: "q", Otherwise: Branch{Next: "a"}},
		},
	}
	results := []tally.Result{{QuestionID: "q", YourAnswer: "x", Tally: true}}
	if _, err := tree.Walk(results); err == nil {
		t.Fatal("expected loop error")
	}
}

func TestValidateRejectsDanglingStep(t *testing.T) {
	tree := &Tree{
		Start: "a",
		Steps: map[string]Step{
			"a": {QuestionID: "q", Branches: map[string]Branch{"yes": {Next: "missing"}}},
		},
	}
	if err := tree.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
