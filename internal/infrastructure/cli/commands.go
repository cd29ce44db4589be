package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omnichat/omnichat/internal/app"
	"github.com/omnichat/omnichat/internal/application/persona"
)

func newProvidersCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := NewRenderer(cmd.OutOrStdout())
			renderer.Providers(container.Config.AIProvider.Provider, providerRows(container))
			return nil
		},
	}
}

func newModelsCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [provider]",
		Short: "List the known models for a provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := container.Config.AIProvider.Provider
			if len(args) == 1 {
				id = strings.ToLower(args[0])
			}
			if _, ok := container.Registry.Describe(id); !ok {
				return fmt.Errorf("unknown provider %q (known: %s)", id, strings.Join(container.Registry.List(), ", "))
			}
			renderer := NewRenderer(cmd.OutOrStdout())
			renderer.Models(id, container.Registry.Models(id))
			return nil
		},
	}
	return cmd
}

func newConfigCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := NewRenderer(cmd.OutOrStdout())
			renderer.Config(container.Config)
			if container.ConfigPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nConfig file: %s\n", container.ConfigPath)
			}
			return nil
		},
	}
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		search string
		export string
		clear  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded turns",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if clear {
				if err := container.History.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "History cleared")
				return nil
			}
			if export != "" {
				if err := container.History.ExportJSON(export); err != nil {
					return err
				}
				fmt.Fprintf(out, "History exported to %s\n", export)
				return nil
			}

			records, err := container.History.Records(limit, search)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No recorded turns")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(out, "[%s] %s/%s (%dms", rec.Timestamp.Format("2006-01-02 15:04"), rec.Provider, rec.Model, rec.LatencyMS)
				if rec.Failovers > 0 {
					fmt.Fprintf(out, ", %d failover", rec.Failovers)
				}
				fmt.Fprintln(out, ")")
				fmt.Fprintf(out, "  You: %s\n", truncateLine(rec.Prompt, 100))
				fmt.Fprintf(out, "  AI:  %s\n", truncateLine(rec.Reply, 100))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum turns to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by prompt or reply text")
	cmd.Flags().StringVar(&export, "export", "", "Export all turns as JSON lines to a file")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all recorded turns")
	return cmd
}

func newPersonasCommand(container *app.Container) *cobra.Command {
	var providerID string

	cmd := &cobra.Command{
		Use:   "personas [question]",
		Short: "Ask one question to several personas in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			id := providerID
			if id == "" {
				id = container.Config.AIProvider.Provider
			}

			opinions := container.Personas.Gather(cmd.Context(), id, question, persona.Defaults())
			renderer := NewRenderer(cmd.OutOrStdout())
			renderer.Opinions(question, opinions)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "Provider to ask (defaults to the configured one)")
	return cmd
}

func truncateLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
