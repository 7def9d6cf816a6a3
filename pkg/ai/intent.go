package ai

import (
	"regexp"
	"strconv"
)

// chapterIntentPattern matches an explicit request to produce a chapter,
// e.g. "write chapter 3", "please generate section 2 for me",
// "give me chapter 1". Matching is case-insensitive.
var chapterIntentPattern = regexp.MustCompile(`(?i)\b(?:write|generate|create|send|give\s+me|make)\b.*?\b(?:chapter|section)\s*([0-9]+)\b`)

// DetectChapterIntent inspects a chat message for an explicit
// write-this-chapter request and returns the chapter number when one in
// the valid 1-5 range is named. It is a one-shot classifier: nothing is
// carried between messages.
func DetectChapterIntent(message string) (int, bool) {
	m := chapterIntentPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}
