package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/omnichat/omnichat/internal/application/chat"
	"github.com/omnichat/omnichat/internal/application/persona"
	"github.com/omnichat/omnichat/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2)

	replyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	replyTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle        = lipgloss.NewStyle().Faint(true)
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// Renderer formats all chat output. Writes go to one writer so tests can
// capture them.
type Renderer struct {
	out io.Writer
}

// NewRenderer builds a renderer targeting out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) Banner(provider, model string, temperature float64) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, titleStyle.Render("omnichat"))
	fmt.Fprintf(r.out, "%s %s (%s), temperature %.1f\n", headStyle.Render("Provider:"), provider, model, temperature)
	fmt.Fprintln(r.out, dimStyle.Render("Commands: /help /switch /providers /models /history /save /clear /quit"))
}

func (r *Renderer) Reply(provider, content string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, replyTitleStyle.Render(provider))
	fmt.Fprintln(r.out, replyStyle.Render(content))
}

func (r *Renderer) Timestamp(t time.Time) {
	fmt.Fprintln(r.out, dimStyle.Render(t.Format("15:04:05")))
}

func (r *Renderer) Notice(msg string) {
	fmt.Fprintln(r.out, okStyle.Render(msg))
}

func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.out, warnStyle.Render(msg))
}

// Error renders a failed turn. Quota exhaustion gets its own guidance so the
// operator knows waiting or switching helps, unlike a generic failure.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, errStyle.Render("Error: "+err.Error()))
}

func (r *Renderer) QuotaGuidance(err error) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, warnStyle.Render("Quota limits reached on every available provider."))
	fmt.Fprintln(r.out, errStyle.Render(err.Error()))
	fmt.Fprintln(r.out, "Suggestions:")
	fmt.Fprintln(r.out, "  - wait for the quota reset (usually 24 hours)")
	fmt.Fprintln(r.out, "  - upgrade to a paid plan for higher limits")
	fmt.Fprintln(r.out, "  - /providers to check provider status")
	fmt.Fprintln(r.out, "  - /switch to try a provider manually")
}

func (r *Renderer) Providers(active string, rows []ProviderRow) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headStyle.Render("Available providers"))
	for _, row := range rows {
		status := okStyle.Render("available")
		if !row.Available {
			status = errStyle.Render("unavailable")
		}
		marker := "  "
		if row.ID == active {
			marker = okStyle.Render("* ")
		}
		fmt.Fprintf(r.out, "%s%-8s %-18s %s", marker, row.ID, row.DisplayName, status)
		if row.FreeTier != "" {
			fmt.Fprintf(r.out, "  %s", dimStyle.Render(row.FreeTier))
		}
		fmt.Fprintln(r.out)
	}
}

// ProviderRow is one line of the providers listing.
type ProviderRow struct {
	ID          string
	DisplayName string
	Available   bool
	FreeTier    string
}

func (r *Renderer) Models(providerID string, models []domain.ModelInfo) {
	fmt.Fprintln(r.out)
	if len(models) == 0 {
		r.Warning("no models known for " + providerID)
		return
	}
	fmt.Fprintln(r.out, headStyle.Render("Models for "+providerID))
	for _, m := range models {
		fmt.Fprintf(r.out, "  %-36s %s\n", m.Name, m.Description)
		fmt.Fprintf(r.out, "  %-36s %s\n", "", dimStyle.Render("best for: "+m.BestFor))
	}
}

func (r *Renderer) Summary(s chat.Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headStyle.Render("Conversation summary"))
	fmt.Fprintf(r.out, "  Provider:       %s\n", s.Provider)
	fmt.Fprintf(r.out, "  Model:          %s\n", s.Model)
	fmt.Fprintf(r.out, "  Started:        %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.out, "  Duration:       %s\n", s.Duration.Truncate(time.Second))
	fmt.Fprintf(r.out, "  Total messages: %d (you %d, ai %d)\n", s.Total, s.Human, s.AI)
}

func (r *Renderer) Config(cfg domain.Config) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headStyle.Render("Current configuration"))
	fmt.Fprintf(r.out, "  Provider:       %s\n", cfg.AIProvider.Provider)
	model := cfg.AIProvider.Model
	if model == "" {
		model = "(provider default)"
	}
	fmt.Fprintf(r.out, "  Model:          %s\n", model)
	fmt.Fprintf(r.out, "  Temperature:    %.1f\n", cfg.AIProvider.Temperature)
	fmt.Fprintf(r.out, "  Max tokens:     %d\n", cfg.AIProvider.MaxTokens)
	fmt.Fprintf(r.out, "  Max history:    %d\n", cfg.Interface.MaxHistory)
	fmt.Fprintf(r.out, "  Auto save:      %t\n", cfg.Interface.AutoSave)
	fmt.Fprintf(r.out, "  Show timestamp: %t\n", cfg.Interface.ShowTimestamp)
}

func (r *Renderer) SwitchNotice(from, to string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, warnStyle.Render("Quota limit reached for "+from))
	fmt.Fprintln(r.out, okStyle.Render("Automatically switched to "+to+"; conversation history preserved"))
}

func (r *Renderer) Opinions(question string, opinions []persona.Opinion) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headStyle.Render("Question: ")+question)
	for _, op := range opinions {
		title := fmt.Sprintf("%s %s", op.Persona.Emoji, op.Persona.Name)
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, replyTitleStyle.Render(title))
		if op.Err != nil {
			fmt.Fprintln(r.out, errStyle.Render("failed: "+op.Err.Error()))
			continue
		}
		fmt.Fprintln(r.out, replyStyle.Render(op.Reply))
	}
}

func (r *Renderer) Help() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headStyle.Render("Commands"))
	for _, line := range []string{
		"/help       show this help",
		"/clear      clear conversation history",
		"/save       save conversation transcript to JSON",
		"/history    show conversation summary",
		"/config     show current configuration",
		"/providers  list providers and availability",
		"/models     list models for the active provider",
		"/switch     switch provider (/switch <provider> [model])",
		"/quit       exit",
	} {
		fmt.Fprintln(r.out, "  "+line)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, dimStyle.Render(strings.TrimSpace(`
When quota limits are reached the chat automatically fails over to the next
provider in priority order and retries your message; history is preserved.`)))
}
