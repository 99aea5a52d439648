package verifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/llm"
	"github.com/rfpcruncher/engine/prompt"
	"github.com/rfpcruncher/engine/schema"
)

// Verifier asks the model to judge a generated answer against the
// retrieved context. The protocol is a single word; anything else the
// model says around it is ignored.
type Verifier struct {
	Provider llm.Provider
	Prompts  *prompt.Builder
}

// verdictRe finds the first verdict word anywhere in the model output.
var verdictRe = regexp.MustCompile(`(?i)\b(correct|incorrect|uncertain)\b`)

// Verify judges answer for question over chunks. Answers that came out of
// the QA cache are trusted curated content and are not sent to the model.
// Model failure or an unparseable reply yields uncertain.
func (v *Verifier) Verify(ctx context.Context, question, answer string, chunks []string, provenance schema.Provenance) schema.VerificationOutcome {
	if provenance.FromCache() {
		return schema.VerificationNotVerified
	}

	p := v.Prompts.Verification(question, answer, chunks)
	resp, err := v.Provider.GenerateCompletion(ctx, p)
	if err != nil {
		logger.Warnf("verifier: model call failed, defaulting to uncertain: %v", err)
		return schema.VerificationUncertain
	}
	outcome := Extract(resp)
	logger.Infof("verifier: verdict %s for %q", outcome, question)
	return outcome
}

// Extract pulls the first verdict word out of raw model output,
// case-insensitively. No verdict word means uncertain.
func Extract(output string) schema.VerificationOutcome {
	m := verdictRe.FindString(output)
	if m == "" {
		return schema.VerificationUncertain
	}
	switch strings.ToLower(m) {
	case "correct":
		return schema.VerificationCorrect
	case "incorrect":
		return schema.VerificationIncorrect
	default:
		return schema.VerificationUncertain
	}
}
