// infragraph-chat is an interactive terminal client for asking the graph
// questions in plain language ("who owns orders-db?", "what breaks if
// redis fails?"). It talks to a running infragraph server's chat
// endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginBottom(1)

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReply struct {
	Op     string `json:"op"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
	Text   string `json:"text"`
}

type answerMsg chatReply

type errMsg struct{ err error }

type model struct {
	serverURL string
	client    *http.Client

	input    textinput.Model
	viewport viewport.Model
	history  []turn
	lines    []string
	waiting  bool
	ready    bool
}

func newModel(serverURL string) model {
	input := textinput.New()
	input.Placeholder = "Ask about your infrastructure..."
	input.Focus()
	input.CharLimit = 500

	return model{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		input:     input,
		lines: []string{
			statusStyle.Render("Connected to " + serverURL),
			statusStyle.Render(`Try "who owns orders-db?" or "what breaks if redis fails?"`),
			"",
		},
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 3
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - inputHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.lines = append(m.lines, questionStyle.Render("you: ")+question)
			m.lines = append(m.lines, statusStyle.Render("thinking..."))
			m.refresh()
			return m, m.ask(question)
		}

	case answerMsg:
		m.waiting = false
		m.dropThinking()
		style := answerStyle
		if !msg.OK {
			style = errorStyle
		}
		for _, line := range strings.Split(msg.Text, "\n") {
			m.lines = append(m.lines, style.Render(line))
		}
		m.lines = append(m.lines, "")
		m.history = append(m.history, turn{Role: "assistant", Content: msg.Text})
		m.refresh()
		return m, nil

	case errMsg:
		m.waiting = false
		m.dropThinking()
		m.lines = append(m.lines, errorStyle.Render("error: "+msg.err.Error()), "")
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}
	return fmt.Sprintf("%s\n%s\n\n%s",
		titleStyle.Render("infragraph chat"),
		m.viewport.View(),
		m.input.View(),
	)
}

// ask posts the question along with recent history.
func (m *model) ask(question string) tea.Cmd {
	history := append([]turn(nil), m.history...)
	m.history = append(m.history, turn{Role: "user", Content: question})
	client := m.client
	target := strings.TrimRight(m.serverURL, "/") + "/api/v1/chat"

	return func() tea.Msg {
		body, err := json.Marshal(map[string]any{
			"message": question,
			"history": history,
		})
		if err != nil {
			return errMsg{err}
		}

		resp, err := client.Post(target, "application/json", bytes.NewReader(body))
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errMsg{fmt.Errorf("server returned %s", resp.Status)}
		}

		var reply chatReply
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			return errMsg{err}
		}
		return answerMsg(reply)
	}
}

func (m *model) dropThinking() {
	if n := len(m.lines); n > 0 && strings.Contains(m.lines[n-1], "thinking") {
		m.lines = m.lines[:n-1]
	}
}

func (m *model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func main() {
	serverURL := flag.String("server", envOr("INFRAGRAPH_SERVER", "http://localhost:8080"),
		"Base URL of the infragraph server")
	flag.Parse()

	program := tea.NewProgram(newModel(*serverURL), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
