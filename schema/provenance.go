package schema

// Provenance records which stage of the answering cascade produced an answer.
type Provenance string

const (
	ProvenanceCache     Provenance = "cache"
	ProvenanceEmbedding Provenance = "embedding"
	ProvenanceFuzzy     Provenance = "fuzzy"
	ProvenanceRetrieval Provenance = "retrieval"
	ProvenanceNone      Provenance = "none"
)

// FromCache reports whether the answer came out of the QA cache,
// whichever matching stage found it.
func (p Provenance) FromCache() bool {
	switch p {
	case ProvenanceCache, ProvenanceEmbedding, ProvenanceFuzzy:
		return true
	}
	return false
}

// VerificationOutcome is the verifier's judgement on a generated answer.
type VerificationOutcome string

const (
	VerificationCorrect     VerificationOutcome = "correct"
	VerificationIncorrect   VerificationOutcome = "incorrect"
	VerificationUncertain   VerificationOutcome = "uncertain"
	VerificationNotVerified VerificationOutcome = "not_verified"
)

// Answer is the final result of answering one query.
type Answer struct {
	Query           string              `json:"query"`
	Response        string              `json:"response"`
	Provenance      Provenance          `json:"provenance"`
	Verification    VerificationOutcome `json:"verification,omitempty"`
	MatchedQuestion string              `json:"matched_question,omitempty"`
	MatchScore      float64             `json:"match_score,omitempty"`
}
