package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/quill/internal/fetch"
	"github.com/Bitlatte/quill/internal/projects"
	"github.com/Bitlatte/quill/internal/prompt"
	"github.com/Bitlatte/quill/internal/scaffold"
	"github.com/Bitlatte/quill/internal/wizard"
)

func newWizard(cmd *cobra.Command) *wizard.Wizard {
	link := appConfig.BaseURL
	if link == "" {
		link = "/"
	}
	return &wizard.Wizard{
		Prompter:     prompt.Terminal{},
		Fetcher:      fetch.New(appConfig.FetchTimeout),
		Writer:       scaffold.NewWriter(appConfig.ContentDir),
		ProjectsFile: appConfig.ProjectsFile,
		ImageDir:     appConfig.ImageDir,
		ImageWidth:   appConfig.ImageWidth,
		Site:         projects.Project{Title: appConfig.SiteTitle, Link: link},
		Out:          cmd.OutOrStdout(),
	}
}

// wizardCommand wraps one wizard flow as a subcommand. Leaving the prompts
// with Ctrl-C is not an error.
func wizardCommand(use, short string, flow func(*wizard.Wizard, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := flow(newWizard(cmd), cmd.Context())
			if wizard.IsAbort(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(
		wizardCommand("run", "Run the site wizard", (*wizard.Wizard).Run),
		wizardCommand("post", "Create a new post", (*wizard.Wizard).Post),
		wizardCommand("link", "Create a new link post", (*wizard.Wizard).Link),
		wizardCommand("changelog", "Create a new changelog entry", (*wizard.Wizard).Changelog),
		wizardCommand("project", "Add a project to the project registry", (*wizard.Wizard).Project),
	)
}
