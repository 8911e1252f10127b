package prompts

import "fmt"

// BuildKeywordPrompt asks for the 3-5 most important keywords of an idea as a JSON array.
func BuildKeywordPrompt(description string) string {
	return fmt.Sprintf(`Extract the 3-5 most important keywords from this business idea: %q.

Return them as a JSON array of strings, for example: ["keyword1", "keyword2", "keyword3"]

Only return the JSON array, nothing else.`, description)
}
