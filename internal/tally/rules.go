// Package tally decides whether two agents' accounts of the same question are
// mutually consistent.
package tally

// RuleKind selects how a question's two answers are compared.
type RuleKind string

const (
	// ExactMatch tallies when both agents gave the same answer.
	ExactMatch RuleKind = "exact"
	// Complementary tallies when the unordered answer pair is listed.
	Complementary RuleKind = "complementary"
)

// Pair is an unordered pair of answers.
type Pair [2]string

func (p Pair) matches(a, b string) bool {
	return (a == p[0] && b == p[1]) || (a == p[1] && b == p[0])
}

type Rule struct {
	Kind  RuleKind
	Pairs []Pair // Complementary only
}

// Rules maps question ids to their tally rule. Questions without a rule never
// tally.
type Rules map[string]Rule

// The agents answer "mine"/"other" from their own side, so one agent's
// "mine" is the other's "other".
var perspectivePairs = []Pair{
	{"mine", "other"},
	{"both", "both"},
}

// DefaultRules covers the embedded Convention questionnaire.
var DefaultRules = Rules{
	"article_11": {Kind: ExactMatch},
	"article_1":  {Kind: Complementary, Pairs: perspectivePairs},
	"article_2":  {Kind: ExactMatch},
	"article_3":  {Kind: Complementary, Pairs: perspectivePairs},
	"article_7a": {Kind: ExactMatch},
	"article_7b": {Kind: ExactMatch},
}

// Tally reports whether yours and theirs are consistent for questionID.
// Comparison is exact: no case folding or whitespace trimming.
func (r Rules) Tally(questionID, yours, theirs string) bool {
	rule, ok := r[questionID]
	if !ok {
		return false
	}
	switch rule.Kind {
	case ExactMatch:
		return yours == theirs
	case Complementary:
		for _, p := range rule.Pairs {
			if p.matches(yours, theirs) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
