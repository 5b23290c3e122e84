package agents

import "fmt"

// Prompt templates for the three agent roles.
const (
	proposerPrompt = "You are an interdisciplinary researcher. Based on the following summarized literature:\n\n" +
		"%s\n\n" +
		"Propose 2 novel, plausible hypotheses. List each clearly."

	validatorPrompt = "You are a rigorous scientific validator. Given the hypothesis:\n\n" +
		"\"%s\"\n\n" +
		"And this summarized context:\n\n" +
		"%s\n\n" +
		"1) Rate feasibility 1-10.\n" +
		"2) Summarize supporting/contradicting evidence.\n" +
		"3) Note assumptions or missing data.\n"

	gapPrompt = "Analyze this summarized context:\n\n%s\n\n" +
		"Identify 2-3 high-priority research gaps, with brief justification."
)

func proposerFor(contextText string) string {
	return fmt.Sprintf(proposerPrompt, contextText)
}

func validatorFor(hypothesis, contextText string) string {
	return fmt.Sprintf(validatorPrompt, hypothesis, contextText)
}

func gapFor(contextText string) string {
	return fmt.Sprintf(gapPrompt, contextText)
}
