package ai

import (
	"fmt"
	"strings"
)

const notSpecified = "Not specified"

// ProfileContext is the academic profile block injected ahead of chat
// messages.
type ProfileContext struct {
	University string
	Faculty    string
	Department string
}

// AssembleContext builds the context string injected into chat prompts:
// the user profile block, then the active project block when a project
// is resolvable, then caller-supplied free text. Missing profile fields
// degrade to "Not specified"; a missing project just omits the project
// block. The result is never empty.
func AssembleContext(profile ProfileContext, projectTopic, projectDepartment, extra string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Student profile: University: %s, Faculty: %s, Department: %s.",
		orNotSpecified(profile.University), orNotSpecified(profile.Faculty), orNotSpecified(profile.Department))
	if strings.TrimSpace(projectTopic) != "" {
		fmt.Fprintf(&sb, "\nActive project: topic %q, department %s.", projectTopic, projectDepartment)
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		sb.WriteString("\n")
		sb.WriteString(extra)
	}
	return sb.String()
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return v
}
