package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stahnma/gh-starneighbours/internal/neighbours"
)

// WriteJSON writes formatted JSON to w, optionally wrapped in a slack code block.
func WriteJSON(w io.Writer, v any, slackMode bool) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	fmt.Fprintln(w, string(output))
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	return nil
}

// WriteNeighbours writes a summary line followed by one
// "repo: user1, user2" line per neighbour.
func WriteNeighbours(w io.Writer, target string, result []neighbours.Neighbour, slackMode bool) {
	if slackMode {
		fmt.Fprintf(w, "Neighbours of `%s` found: *%d*\n", target, len(result))
	} else {
		fmt.Fprintf(w, "Neighbours of %s found: %d\n", target, len(result))
	}
	if len(result) == 0 {
		return
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	for _, n := range result {
		fmt.Fprintf(w, "%s: %s\n", n.Repo, strings.Join(n.Stargazers, ", "))
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
}

// WriteList writes a counted list of names, one per line.
func WriteList(w io.Writer, label string, names []string, slackMode bool) {
	if slackMode {
		fmt.Fprintf(w, "%s: *%d*\n", label, len(names))
		fmt.Fprintln(w, "```")
	} else {
		fmt.Fprintf(w, "%s: %d\n", label, len(names))
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
}
