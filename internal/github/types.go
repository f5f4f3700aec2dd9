package github

import (
	"fmt"
	"strings"
)

// FullName returns the "owner/name" form of a repository.
func FullName(owner, name string) string {
	return owner + "/" + name
}

// SplitFullName parses an "owner/name" argument.
func SplitFullName(fullName string) (owner, name string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", fullName)
	}
	return parts[0], parts[1], nil
}
