package outcome

import "github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/tally"

const (
	ConflictMessage = "Unfortunately, your version of events conflicts with the other agent's version of events. In court, they would now examine your evidence to try and establish which version of events is correct. The SmartResolution Maritime Collision module is currently incapable of doing this."

	FallbackMessage = "Could not deduce summary."

	ExclusionParagraph = "The Convention does not apply to ships of war or to Government ships appropriated exclusively to a public service, according to Article 11."

	AccidentalMineParagraph  = "Your client's vessel was damaged in an accidental collision. According to Article 2, they must suffer the damages themselves."
	AccidentalOtherParagraph = "The other party's vessel was damaged in an accidental collision. According to Article 2, your client must suffer the damages themselves."
	AccidentalBothParagraph  = "Both parties' vessels were damaged in an accidental collision. According to Article 2, both parties must suffer their own damages themselves, not the other party."

	TimeBarParagraph   = "According to Article 7, actions for the recovery of damages are barred after an interval of two years from the date of the casualty. Neither party can recover damages from the other."
	ExtensionParagraph = "Although in most cases the recovery of damages are barred after an interval of two years from the date of the casualty, said periods can be extended in cases such as yours, where it has not been possible to arrest the defendant vessel in the territorial waters of the State in which the plaintiff has his domicile or principal place of business (Article 7)."

	FaultMineParagraph  = "According to Article 3, if the collision is caused by the fault of one of the vessels, liability to make good the damages attaches to the one which has committed the fault. Therefore, your client is responsible for the damages."
	FaultOtherParagraph = "According to Article 3, if the collision is caused by the fault of one of the vessels, liability to make good the damages attaches to the one which has committed the fault. Therefore, the other client is responsible for the damages."

	ProportionalParagraph   = "Article 4 states: the liability of each vessel is in proportion to the degree of the faults respectively committed. Provided that if, having regard to the circumstances, it is not possible to establish the degree of the respective faults, or if it appears that the faults are equal, the liability is apportioned equally."
	ThirdPartyCapParagraph  = "The damages caused, either to the vessels or to their cargoes or to the effects or other property of the crews, passengers, or other persons on board, are borne by the vessels in fault in the above proportions, and even to third parties a vessel is not liable for more than such proportion of such damages."
	JointLiabilityParagraph = "In respect of damages caused by death or personal injuries, the vessels in fault are jointly as well as severally liable to third parties. It is left to the law of each country to determine, as regards such right to obtain contribution, the meaning and effect of any contract or provision of law which limits the liability of the owners of a vessel towards persons on board."
)

// Question ids the Convention tree branches on.
const (
	QuestionExclusion     = "article_11"
	QuestionVesselDamaged = "article_1"
	QuestionAccidental    = "article_2"
	QuestionFault         = "article_3"
	QuestionRecent        = "article_7a"
	QuestionArrestable    = "article_7b"
)

// ConventionTree builds the Convention decision tree. arrestBarAnswer is the
// answer to the arrest question that makes the two-year bar apply; any other
// answer extends the period and goes on to apportion damages.
func ConventionTree(arrestBarAnswer string) *Tree {
	return &Tree{
		Start: "exclusion",
		Steps: map[string]Step{
			"exclusion": {
				QuestionID: QuestionExclusion,
				Branches: map[string]Branch{
					"yes": {Paragraphs: []string{ExclusionParagraph}},
				},
				Otherwise: Branch{Next: "accidental"},
			},
			"accidental": {
				QuestionID: QuestionAccidental,
				Branches: map[string]Branch{
					"yes": {Next: "vessel-damaged"},
				},
				Otherwise: Branch{Next: "time-bar"},
			},
			"vessel-damaged": {
				QuestionID: QuestionVesselDamaged,
				Branches: map[string]Branch{
					"mine":  {Paragraphs: []string{AccidentalMineParagraph}},
					"other": {Paragraphs: []string{AccidentalOtherParagraph}},
					"both":  {Paragraphs: []string{AccidentalBothParagraph}},
				},
			},
			"time-bar": {
				QuestionID: QuestionRecent,
				Branches: map[string]Branch{
					"no": {Next: "arrest"},
				},
				Otherwise: Branch{Next: "fault"},
			},
			"arrest": {
				QuestionID: QuestionArrestable,
				Branches: map[string]Branch{
					arrestBarAnswer: {Paragraphs: []string{TimeBarParagraph}},
				},
				Otherwise: Branch{Paragraphs: []string{ExtensionParagraph}, Next: "fault"},
			},
			"fault": {
				QuestionID: QuestionFault,
				Branches: map[string]Branch{
					"mine":  {Paragraphs: []string{FaultMineParagraph}},
					"other": {Paragraphs: []string{FaultOtherParagraph}},
					"both":  {Paragraphs: []string{ProportionalParagraph, ThirdPartyCapParagraph, JointLiabilityParagraph}},
				},
			},
		},
	}
}

// Deduce walks the tree over fully tallied results. It never returns an
// empty summary.
func (t *Tree) Deduce(results []tally.Result) ([]string, error) {
	paragraphs, err := t.Walk(results)
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return []string{FallbackMessage}, nil
	}
	return paragraphs, nil
}

// Summarize returns the conflict message when any result fails to tally,
// otherwise the deduced summary.
func (t *Tree) Summarize(results []tally.Result) ([]string, error) {
	if !tally.AllTally(results) {
		return []string{ConflictMessage}, nil
	}
	return t.Deduce(results)
}
