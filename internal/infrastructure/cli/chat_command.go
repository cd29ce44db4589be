package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnichat/omnichat/internal/app"
	"github.com/omnichat/omnichat/internal/application/chat"
	"github.com/omnichat/omnichat/internal/domain"
)

// autoSaveEvery is the user-message interval between automatic transcript
// saves when auto_save is enabled.
const autoSaveEvery = 10

func newChatCommand(container *app.Container) *cobra.Command {
	var (
		providerFlag string
		modelFlag    string
		stream       bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if providerFlag != "" {
				container.Config.AIProvider.Provider = providerFlag
			}
			if modelFlag != "" {
				container.Config.AIProvider.Model = modelFlag
			}

			session, err := container.NewSession()
			if err != nil {
				return err
			}

			loop := &chatLoop{
				container: container,
				session:   session,
				renderer:  NewRenderer(cmd.OutOrStdout()),
				in:        bufio.NewScanner(os.Stdin),
				stream:    stream,
			}
			return loop.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Provider to start with (gemini|openai|claude|groq|ollama)")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model override for the chosen provider")
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream replies token by token")
	return cmd
}

type chatLoop struct {
	container *app.Container
	session   *chat.Session
	renderer  *Renderer
	in        *bufio.Scanner
	stream    bool

	userMessages int
}

func (l *chatLoop) run(cmd *cobra.Command) error {
	providerID, model := l.session.Provider()
	l.renderer.Banner(providerID, model, l.container.Config.AIProvider.Temperature)

	for {
		fmt.Fprint(cmd.OutOrStdout(), "\nYou: ")
		if !l.in.Scan() {
			break
		}
		line := strings.TrimSpace(l.in.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := l.dispatch(line); quit {
				break
			}
			continue
		}

		l.turn(cmd, line)
	}

	l.renderer.Summary(l.session.Summarize())
	return nil
}

// turn runs one user message through the session and renders the outcome.
func (l *chatLoop) turn(cmd *cobra.Command, text string) {
	ctx := cmd.Context()
	beforeID, _ := l.session.Provider()
	start := time.Now()

	var reply string
	var failovers int
	var err error
	if l.stream {
		afterTitle := false
		reply, err = l.session.SendStreaming(ctx, text, func(delta string) {
			if !afterTitle {
				fmt.Fprintln(cmd.OutOrStdout())
				afterTitle = true
			}
			fmt.Fprint(cmd.OutOrStdout(), delta)
		})
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	} else {
		var turn chat.Turn
		turn, err = l.session.Send(ctx, text)
		reply = turn.Reply
		failovers = turn.Failovers
	}

	afterID, afterModel := l.session.Provider()

	if err != nil {
		var quotaErr *domain.QuotaError
		if errors.As(err, &quotaErr) {
			l.renderer.QuotaGuidance(err)
		} else {
			l.renderer.Error(err)
		}
		return
	}

	if failovers > 0 {
		l.renderer.SwitchNotice(beforeID, afterID)
	}

	if !l.stream {
		desc, _ := l.container.Registry.Describe(afterID)
		l.renderer.Reply(desc.DisplayName, reply)
	}
	if l.container.Config.Interface.ShowTimestamp {
		l.renderer.Timestamp(time.Now())
	}

	l.record(text, reply, afterID, afterModel, time.Since(start), failovers)
	l.userMessages++
	l.maybeAutoSave()
}

func (l *chatLoop) record(prompt, reply, providerID, model string, latency time.Duration, failovers int) {
	summary := l.session.Summarize()
	err := l.container.History.Save(domain.TurnRecord{
		SessionID: summary.SessionID,
		Timestamp: time.Now(),
		Provider:  providerID,
		Model:     model,
		Prompt:    prompt,
		Reply:     reply,
		LatencyMS: latency.Milliseconds(),
		Failovers: failovers,
	})
	if err != nil {
		l.container.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

func (l *chatLoop) maybeAutoSave() {
	if !l.container.Config.Interface.AutoSave {
		return
	}
	if l.userMessages == 0 || l.userMessages%autoSaveEvery != 0 {
		return
	}
	path, err := l.container.Transcripts.Save(l.session.Transcript())
	if err != nil {
		l.container.Logger.Warn("auto save failed", map[string]interface{}{"error": err.Error()})
		return
	}
	l.renderer.Notice("Conversation auto-saved to " + path)
}

// dispatch handles a slash command; returns true when the loop should exit.
func (l *chatLoop) dispatch(line string) bool {
	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		l.renderer.Help()
	case "/clear":
		l.session.Clear()
		l.renderer.Notice("Conversation history cleared")
	case "/save":
		path, err := l.container.Transcripts.Save(l.session.Transcript())
		if err != nil {
			l.renderer.Error(err)
			break
		}
		l.renderer.Notice("Conversation saved to " + path)
	case "/history":
		l.renderer.Summary(l.session.Summarize())
	case "/config":
		l.renderer.Config(l.container.Config)
	case "/providers":
		active, _ := l.session.Provider()
		l.renderer.Providers(active, providerRows(l.container))
	case "/models":
		id, _ := l.session.Provider()
		l.renderer.Models(id, l.session.ActiveAdapter().AvailableModels())
	case "/switch":
		l.switchProvider(args)
	default:
		l.renderer.Warning("Unknown command " + command + "; /help lists commands")
	}
	return false
}

func (l *chatLoop) switchProvider(args []string) {
	if len(args) == 0 {
		l.renderer.Warning("Usage: /switch <provider> [model]")
		active, _ := l.session.Provider()
		l.renderer.Providers(active, providerRows(l.container))
		return
	}

	id := strings.ToLower(args[0])
	model := ""
	if len(args) > 1 {
		model = args[1]
	}

	if err := l.session.SwitchProvider(id, model); err != nil {
		l.renderer.Error(err)
		return
	}

	_, activeModel := l.session.Provider()
	l.renderer.Notice(fmt.Sprintf("Switched to %s (%s); history preserved", id, activeModel))
}

func providerRows(container *app.Container) []ProviderRow {
	rows := make([]ProviderRow, 0, len(container.Registry.List()))
	for _, id := range container.Registry.List() {
		desc, ok := container.Registry.Describe(id)
		if !ok {
			continue
		}
		rows = append(rows, ProviderRow{
			ID:          id,
			DisplayName: desc.DisplayName,
			Available:   container.Registry.IsAvailable(id),
			FreeTier:    formatFreeTier(desc.FreeTier),
		})
	}
	return rows
}

func formatFreeTier(ft *domain.FreeTier) string {
	if ft == nil {
		return ""
	}
	if ft.RequestsPerDay > 0 {
		return fmt.Sprintf("%d req/day free", ft.RequestsPerDay)
	}
	return ft.Notes
}
