package llm

import (
	"fmt"
	"strings"
)

// SummaryPrompt builds the prompt for summarizing a group of project
// messages in a digest section.
func SummaryPrompt(projectName, section string, lines []string) string {
	return fmt.Sprintf(`Summarize these %d chat messages from the %q project for a daily digest (%s section). Focus on the key updates, decisions, or blockers. Reply with 1-2 sentences, no preamble.

Messages:
%s

Summary:`, len(lines), projectName, section, strings.Join(lines, "\n"))
}
