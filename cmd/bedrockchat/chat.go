package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/bedrockchat/client"
	"github.com/a-h/bedrockchat/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Shown in place of any server error, matching the web page.
const genericFailure = "An error occurred while processing your request."

type ChatCommand struct {
	ServerURL    string `help:"The URL of the chat server." env:"CHAT_SERVER_URL" default:"http://localhost:9020"`
	ServerAPIKey string `help:"The API key for the chat server." env:"CHAT_SERVER_API_KEY" default:""`
	Model        string `help:"The model to chat with. The server default is used if empty." env:"MODEL" default:""`
	LogLevel     string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

type role string

const (
	roleHuman role = "human"
	roleAI    role = "ai"
)

type entry struct {
	Role    role
	Content string
}

type prompt struct {
	Message     string
	Attachments []models.Attachment
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rsc := client.New(c.ServerURL, c.ServerAPIKey)

	toLLM := make(chan prompt)
	fromLLM := make(chan []entry)

	go converse(ctx, func(ctx context.Context, p prompt) (string, error) {
		return send(ctx, rsc, c.Model, p)
	}, toLLM, fromLLM)

	p := tea.NewProgram(newModel(ctx, c.Model, toLLM, fromLLM))
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

// converse sends each prompt in turn and publishes the transcript after every
// answer. It returns when ctx is cancelled.
func converse(ctx context.Context, send func(context.Context, prompt) (string, error), toLLM <-chan prompt, fromLLM chan<- []entry) {
	var transcript []entry
	for {
		var p prompt
		select {
		case p = <-toLLM:
		case <-ctx.Done():
			return
		}
		transcript = append(transcript, entry{Role: roleHuman, Content: describePrompt(p)})
		resp, err := send(ctx, p)
		if err != nil {
			resp = genericFailure
		}
		transcript = append(transcript, entry{Role: roleAI, Content: resp})
		select {
		case fromLLM <- append([]entry(nil), transcript...):
		case <-ctx.Done():
			return
		}
	}
}

func send(ctx context.Context, rsc client.Client, modelID string, p prompt) (string, error) {
	req := models.ChatPostRequest{
		Message: p.Message,
		ModelID: modelID,
	}
	var resp models.ChatPostResponse
	var err error
	if len(p.Attachments) == 0 {
		resp, err = rsc.ChatPost(ctx, req)
	} else {
		resp, err = rsc.ChatPostMultipart(ctx, req, p.Attachments)
	}
	return resp.Response, err
}

func describePrompt(p prompt) string {
	if len(p.Attachments) == 0 {
		return p.Message
	}
	names := make([]string, len(p.Attachments))
	for i, a := range p.Attachments {
		names[i] = a.Name
	}
	return fmt.Sprintf("%s\n📎 %s", p.Message, strings.Join(names, ", "))
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(1).Padding(1)

const header = `Amazon Bedrock Chat

Type a message and press enter.
/attach <path> adds a file to the next message, /clear drops pending files.`

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	ctx      context.Context
	modelID  string

	// Files to send with the next message.
	pending []models.Attachment
	status  string

	toLLM   chan prompt
	fromLLM chan []entry
}

func newModel(ctx context.Context, modelID string, toLLM chan prompt, fromLLM chan []entry) model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 4000

	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	ta.KeyMap.InsertNewline.SetEnabled(false)

	return model{
		ctx:      ctx,
		modelID:  modelID,
		textarea: ta,
		viewport: vp,
		fromLLM:  fromLLM,
		toLLM:    toLLM,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribeToFromLLM(),
	)
}

// sendToLLM hands the prompt to the worker without blocking Update.
func (m model) sendToLLM(p prompt) tea.Cmd {
	return func() tea.Msg {
		select {
		case m.toLLM <- p:
		case <-m.ctx.Done():
		}
		return nil
	}
}

func (m model) subscribeToFromLLM() tea.Cmd {
	return func() tea.Msg {
		select {
		case x := <-m.fromLLM:
			return x
		case <-m.ctx.Done():
			return nil
		}
	}
}

var roleToStyle = map[role]lipgloss.Style{
	roleHuman: lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Pink),
	roleAI:    lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan),
}

var roleToIcon = map[role]string{
	roleHuman: "🥷",
	roleAI:    "✨",
}

func formatEntry(e entry) string {
	style, ok := roleToStyle[e.Role]
	if !ok {
		return e.Content
	}
	icon, ok := roleToIcon[e.Role]
	if !ok {
		icon = "🤷"
	}
	wrapped := wordwrap.String(strings.TrimSpace(icon+" "+e.Content), 80)
	return style.Render(wrapped)
}

var statusStyle = lipgloss.NewStyle().Foreground(Comment)
var errorStatusStyle = lipgloss.NewStyle().Foreground(Red)

func (m model) statusLine() string {
	if m.status != "" {
		return errorStatusStyle.Render(m.status)
	}
	modelID := m.modelID
	if modelID == "" {
		modelID = "server default"
	}
	s := "model: " + modelID
	if len(m.pending) > 0 {
		names := make([]string, len(m.pending))
		for i, a := range m.pending {
			names[i] = a.Name
		}
		s += " | attachments: " + strings.Join(names, ", ")
	}
	return statusStyle.Render(s)
}

// command handles the slash commands typed into the textarea.
func (m model) command(v string) model {
	name, arg, _ := strings.Cut(v, " ")
	switch name {
	case "/attach":
		attachments, err := readAttachments([]string{strings.TrimSpace(arg)})
		if err != nil {
			m.status = err.Error()
			return m
		}
		m.pending = append(m.pending, attachments...)
		m.status = ""
	case "/clear":
		m.pending = nil
		m.status = ""
	default:
		m.status = fmt.Sprintf("unknown command %s", name)
	}
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case []entry:
		var sb strings.Builder
		for _, e := range msg {
			sb.WriteString(formatEntry(e))
			sb.WriteString("\n")
		}
		m.viewport.SetContent(sb.String())
		m.viewport.GotoBottom()
		return m, m.subscribeToFromLLM()
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())

			if v == "" {
				// Don't send empty messages.
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(v, "/") {
				return m.command(v), nil
			}

			p := prompt{Message: v, Attachments: m.pending}
			m.pending = nil
			m.status = ""
			return m, m.sendToLLM(p)
		default:
			// Send all other keypresses to the textarea.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m model) View() string {
	return fmt.Sprintf("%s\n%s\n\n%s",
		m.viewport.View(),
		m.statusLine(),
		m.textarea.View(),
	) + "\n\n"
}
