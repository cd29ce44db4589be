package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/omnichat/omnichat/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	chatCmd := newChatCommand(container)

	root := &cobra.Command{
		Use:   "omnichat",
		Short: "Multi-provider AI chat",
		Long:  "omnichat is a terminal chat client that talks to several AI providers and fails over automatically when quota limits are hit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatCmd.SetArgs(args)
			return chatCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(chatCmd)
	root.AddCommand(newProvidersCommand(container))
	root.AddCommand(newModelsCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newPersonasCommand(container))
	return root, nil
}
