package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-starneighbours/internal/format"
	ghub "github.com/stahnma/gh-starneighbours/internal/github"
)

func (a *App) newNeighboursCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbours OWNER/REPO",
		Short: "List repositories sharing stargazers with OWNER/REPO",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNeighbours(cmd, args[0])
		},
	}
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

func (a *App) runNeighbours(cmd *cobra.Command, fullName string) error {
	owner, repo, err := ghub.SplitFullName(fullName)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()

	result, err := a.Neighbours(cmd.Context(), owner, repo)
	if err != nil {
		return fmt.Errorf("finding neighbours: %w", err)
	}

	if asJSON {
		return format.WriteJSON(w, result, a.Config.SlackMode)
	}
	format.WriteNeighbours(w, fullName, result, a.Config.SlackMode)
	return nil
}
