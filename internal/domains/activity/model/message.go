package model

import (
	"fmt"
	"strings"
)

// UnknownName stands in for a title or member name that could not be resolved.
const UnknownName = "Unknown"

// DisplayName returns name, or UnknownName when it is blank.
func DisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownName
	}
	return name
}

func IssueMessage(title, memberName string) string {
	return fmt.Sprintf(`Issued "%s" to %s`, DisplayName(title), DisplayName(memberName))
}

func ReturnMessage(title, memberName string) string {
	return fmt.Sprintf(`Returned "%s" by %s`, DisplayName(title), DisplayName(memberName))
}

func AddBookMessage(title string) string {
	return "Added book: " + DisplayName(title)
}

func AddMemberMessage(name string) string {
	return "Added member: " + DisplayName(name)
}
