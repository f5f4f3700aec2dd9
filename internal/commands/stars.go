package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-starneighbours/internal/format"
	ghub "github.com/stahnma/gh-starneighbours/internal/github"
)

func (a *App) newStargazersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stargazers OWNER/REPO",
		Short: "List the users who starred OWNER/REPO",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := ghub.SplitFullName(args[0])
			if err != nil {
				return err
			}
			if err := a.ensureClient(); err != nil {
				return err
			}
			logins, err := ghub.Collect(ghub.Stargazers(cmd.Context(), a.GHClient, owner, repo, a.pageOptions()))
			if err != nil {
				return fmt.Errorf("listing stargazers: %w", err)
			}
			format.WriteList(cmd.OutOrStdout(), "Stargazers of "+args[0], logins, a.Config.SlackMode)
			return nil
		},
	}
}

func (a *App) newStarredCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "starred USER",
		Short: "List the repositories USER has starred",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureClient(); err != nil {
				return err
			}
			repos, err := ghub.Collect(ghub.StarredRepositories(cmd.Context(), a.GHClient, args[0], a.pageOptions()))
			if err != nil {
				return fmt.Errorf("listing starred repositories: %w", err)
			}
			format.WriteList(cmd.OutOrStdout(), "Repositories starred by "+args[0], repos, a.Config.SlackMode)
			return nil
		},
	}
}
