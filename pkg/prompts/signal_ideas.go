package prompts

import (
	"fmt"
	"strings"
)

// ProblemCount is a normalized problem and how often it was mentioned.
type ProblemCount struct {
	Problem string `json:"problem"`
	Count   int    `json:"count"`
}

// SignalLine is the part of a community signal the idea prompt shows.
type SignalLine struct {
	Title          string
	Platform       string
	SignalStrength int
}

// BuildSignalIdeasPrompt asks for 3 startup ideas grounded in the given problems and signals.
func BuildSignalIdeasPrompt(problems []ProblemCount, signals []SignalLine) string {
	var b strings.Builder

	b.WriteString("Based on these community signals and problems, generate 3 startup ideas:\n\n")

	b.WriteString("Top Problems Identified:\n")
	for _, p := range problems {
		fmt.Fprintf(&b, "- %s (mentioned %d times)\n", p.Problem, p.Count)
	}

	b.WriteString("\nHigh Engagement Signals:\n")
	for _, s := range signals {
		fmt.Fprintf(&b, "- %q on %s (Signal Strength: %d)\n", s.Title, s.Platform, s.SignalStrength)
	}

	b.WriteString(`
Generate 3 startup ideas that solve these real problems. For each idea provide:
1. Title
2. Problem it solves
3. Solution approach
4. Target market
5. Why community signals support this opportunity

Format as a JSON array of objects with these fields:
- title
- problem
- solution
- targetMarket
- communityEvidence
- signalStrength (integer 1-10 based on community validation)
- estimatedARR`)

	return b.String()
}
