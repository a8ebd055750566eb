package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdai-go/internal/app"
	"github.com/doeshing/cmdai-go/internal/application/ask"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/infrastructure/cli/commands"
)

// DirectTools get a top-level subcommand equivalent to "ask <tool>".
var DirectTools = []string{"git", "az", "azure", "docker", "kubectl", "npm", "yarn"}

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The returned func releases the
// container's resources.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func() error, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, nil, err
	}
	container.AskService.Prompter = NewPrompter(nil, nil)

	var verbose bool
	root := &cobra.Command{
		Use:           "cmdai",
		Short:         "CmdAI - natural language to CLI commands",
		Long:          "CmdAI translates natural language into git, az, docker and kubectl commands using local or hosted AI models, with pattern-based fallback.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Parsed early by main; declared here so cobra accepts it.
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(newAskCommand(container))
	for _, tool := range DirectTools {
		root.AddCommand(newToolCommand(container, tool))
	}
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewLearningCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, container.Close, nil
}

type askFlags struct {
	previewOnly bool
	workdir     string
}

func (f *askFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.previewOnly, "preview-only", "p", false, "Only show the suggested command, do not execute")
	cmd.Flags().StringVar(&f.workdir, "cwd", "", "Working directory for context and execution (default: current directory)")
}

func newAskCommand(container *app.Container) *cobra.Command {
	var flags askFlags
	cmd := &cobra.Command{
		Use:   "ask <tool> <query...>",
		Short: "Ask for help with a specific tool",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CommandRequest{
				Tool:  args[0],
				Query: strings.Join(args[1:], " "),
			}
			return runAsk(cmd, container, req, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newToolCommand(container *app.Container, tool string) *cobra.Command {
	var flags askFlags
	cmd := &cobra.Command{
		Use:   tool + " <query...>",
		Short: "Direct " + tool + " command assistance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CommandRequest{
				Tool:            tool,
				Query:           strings.Join(args, " "),
				IsDirectCommand: true,
			}
			return runAsk(cmd, container, req, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runAsk(cmd *cobra.Command, container *app.Container, req domain.CommandRequest, flags askFlags) error {
	out := cmd.OutOrStdout()
	sp := NewSpinner(cmd.ErrOrStderr(), "Thinking...")

	svc := *container.AskService
	svc.Presenter = func(result domain.CommandResult) {
		sp.Stop()
		RenderSuggestion(out, result)
	}

	sp.Start()
	outcome, err := svc.Run(cmd.Context(), ask.Request{
		Command:          req,
		WorkingDirectory: flags.workdir,
		PreviewOnly:      flags.previewOnly,
	})
	sp.Stop()
	if err != nil {
		return err
	}
	RenderOutcome(out, req, outcome, flags.previewOnly)
	return nil
}
