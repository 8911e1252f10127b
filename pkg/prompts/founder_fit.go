package prompts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// founderQuestions labels the quiz question ids.
var founderQuestions = map[string]string{
	"1": "Technical background",
	"2": "Time commitment",
	"3": "Industry interests",
	"4": "Problem-solving preference",
	"5": "Risk tolerance (1-10)",
	"6": "Target customer segment",
	"7": "Current skills",
	"8": "Primary motivation",
}

// FormatFounderAnswers renders one "Label: a, b" line per question, in
// ascending numeric id order. Unknown ids are labelled with the id itself.
func FormatFounderAnswers(answers map[string][]string) string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		label, ok := founderQuestions[id]
		if !ok {
			label = id
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, strings.Join(answers[id], ", ")))
	}
	return strings.Join(lines, "\n")
}

// BuildFounderFitPrompt asks for 5 ideas matched to a founder profile.
func BuildFounderFitPrompt(answers map[string][]string) string {
	return fmt.Sprintf(`Based on this founder's profile, generate 5 highly personalized startup ideas that match their skills, interests, and capabilities:

%s

For each idea, provide:
1. A compelling title
2. A clear problem statement
3. The solution approach
4. Why this fits the founder's profile
5. Target market
6. Revenue model
7. Estimated time to MVP
8. Required initial investment range
9. Key success factors

Format as a JSON array with these fields:
- title (string)
- problem (string)
- solution (string)
- founderFit (string) - explain why this matches their profile
- targetMarket (string)
- revenueModel (string)
- timeToMVP (string)
- initialInvestment (string)
- keySuccessFactors (array of strings)
- estimatedARR (string) - realistic revenue potential

Make the ideas specific, actionable, and well matched to the answers. Focus on realistic opportunities the founder could execute given their background.`, FormatFounderAnswers(answers))
}
