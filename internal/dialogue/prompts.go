package dialogue

import (
	"fmt"
	"strings"

	"github.com/dialectiq/dialectiq/internal/store"
)

// synthesisInstruction is deliberately not bound to either agent identity.
const synthesisInstruction = "You are a neutral moderator. You weigh both sides of a debate " +
	"dispassionately and produce a single reconciling conclusion."

func openingThesisPrompt(topic string) string {
	return fmt.Sprintf("State your position on the following topic and support it with your strongest arguments.\n\nTopic: %s", topic)
}

func antithesisPrompt(topic, lastThesis string) string {
	return fmt.Sprintf("The topic under debate is: %s\n\nYour opponent argued:\n\n%s\n\n"+
		"Challenge this position. Expose its weakest assumptions and argue the counter-position.", topic, lastThesis)
}

func rebuttalPrompt(topic, antithesis string) string {
	return fmt.Sprintf("The topic under debate is: %s\n\nYour opponent countered:\n\n%s\n\n"+
		"Rebut these objections and strengthen your position where the critique landed.", topic, antithesis)
}

func synthesisPrompt(topic string, transcript []*store.MessageRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following is the full transcript of a debate on: %s\n\n", topic)
	for _, m := range transcript {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Tag, m.Content)
	}
	b.WriteString("Produce a balanced synthesis: the strongest surviving claims from both sides, " +
		"reconciled into one conclusion. Do not take a side.")
	return b.String()
}

func decomposePrompt(question string) string {
	return fmt.Sprintf("Decompose the following research question into 3-5 focused sub-questions, "+
		"one per line.\n\nQuestion: %s", question)
}

func answerPrompt(question, subQuestions string) string {
	return fmt.Sprintf("The research question is: %s\n\nAnswer each of the following sub-questions "+
		"in turn, concisely and factually:\n\n%s", question, subQuestions)
}

func findingsPrompt(question, subQuestions, answers string) string {
	return fmt.Sprintf("The research question was: %s\n\nSub-questions:\n%s\n\nAnswers:\n%s\n\n"+
		"Synthesize a final findings statement that directly addresses the original question.",
		question, subQuestions, answers)
}
