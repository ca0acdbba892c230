package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/fsbrowse/fsbrowse/internal/client"
	"github.com/fsbrowse/fsbrowse/internal/listing"
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for the title bar.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for the tree panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// pathStyle defines the style for the current directory line.
	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	// keyStyle defines the style for a listed directory key.
	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	// warnStyle defines the style for warning lines.
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	// errStyle defines the style for error lines.
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	// helpStyle defines the style for the help line.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// ListingMsg is a [tea.Msg] carrying a received [listing.Listing] and its raw
// response size.
type ListingMsg struct {
	Result *listing.Listing
	Size   int
}

// ChangeRootMsg is a [tea.Msg] carrying the server's literal cd response.
type ChangeRootMsg struct {
	Target   string
	Response string
}

// RequestFailedMsg is a [tea.Msg] carrying a local request/decode failure.
type RequestFailedMsg struct {
	Err error
}

// TeaModel is the principal [tea.Model] for the browsing client.
type TeaModel struct {
	width  int
	height int

	client *client.Client

	input    textinput.Model
	treeView viewport.Model

	status string
	ready  bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(wireClient *client.Client) TeaModel {
	input := textinput.New()
	input.Placeholder = "ls <path> | cd <path> | clear | exit"
	input.Focus()

	treeView := viewport.New(80, 20)

	return TeaModel{
		client:   wireClient,
		input:    input,
		treeView: treeView,
		status:   "Connected.",
		ready:    false,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		textinput.Blink,
		requestListing(m.client, ""),
	)
}

// requestListing produces a [tea.Cmd] performing one ls round-trip.
func requestListing(c *client.Client, rel string) tea.Cmd {
	return func() tea.Msg {
		result, size, err := c.RequestListing(rel)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}

		return ListingMsg{Result: result, Size: size}
	}
}

// requestChangeRoot produces a [tea.Cmd] performing one cd round-trip.
func requestChangeRoot(c *client.Client, target string) tea.Cmd {
	return func() tea.Msg {
		response, err := c.ChangeRoot(target)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}

		return ChangeRootMsg{Target: target, Response: response}
	}
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()

			return m.handleSubmit(line)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.treeView.Width = m.width - 2
		// Tree panel: full height minus title, borders, status, input, help.
		m.treeView.Height = m.height - 7 //nolint:mnd

		if !m.ready {
			m.ready = true
		}

	case ListingMsg:
		m.treeView.SetContent(renderListing(msg.Result))
		m.treeView.GotoTop()
		m.status = fmt.Sprintf("Response: %s", humanize.IBytes(uint64(msg.Size)))

	case ChangeRootMsg:
		m.status = msg.Response
		if msg.Response == "OK" {
			m.status = fmt.Sprintf("Root directory changed to %s", msg.Target)

			// Refresh the tree for the new root.
			cmds = append(cmds, requestListing(m.client, ""))
		}

	case RequestFailedMsg:
		m.status = errStyle.Render(fmt.Sprintf("Request failed: %v", msg.Err))
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.treeView, cmd = m.treeView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleSubmit routes one submitted command line. Only ls and cd go to the
// server; clear and exit are handled locally, anything else is rejected
// locally without a round-trip.
//
//nolint:ireturn
func (m TeaModel) handleSubmit(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	switch fields[0] {
	case "exit", "quit":
		return m, tea.Quit

	case "clear":
		m.treeView.SetContent("")
		m.status = "Connected."

		return m, nil

	case "ls":
		rel := ""
		if len(fields) > 1 {
			rel = fields[1]
		}

		return m, requestListing(m.client, rel)

	case "cd":
		if len(fields) < 2 {
			m.status = warnStyle.Render("Specify a target directory!")

			return m, nil
		}

		return m, requestChangeRoot(m.client, fields[1])

	default:
		m.status = errStyle.Render("Unknown command")

		return m, nil
	}
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Connecting..."
	}

	width := m.width - 2

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(width).Render("Remote Directory Browser"),
		borderStyle.Width(width).Render(m.treeView.View()),
		lipgloss.NewStyle().Width(width).Render(m.status),
		m.input.View(),
		helpStyle.Width(width).Render("enter: send command • esc/ctrl+c: quit"),
	)
}

// renderListing renders one received listing as a colored directory tree.
func renderListing(l *listing.Listing) string {
	if l.Error != "" {
		return errStyle.Render("Error: " + l.Error)
	}

	var s strings.Builder

	if l.Warning != "" {
		s.WriteString(warnStyle.Render(l.Warning) + "\n")
	}

	s.WriteString(pathStyle.Render("Current directory: "+l.CurrentPath) + "\n\n")

	keys := make([]string, 0, len(l.Entries))
	for key := range l.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := l.Entries[key]

		s.WriteString(keyStyle.Render(key) + "\n")
		for _, dir := range entry.Dirs {
			s.WriteString("\t📁 " + dir + "\n")
		}
		for _, file := range entry.Files {
			s.WriteString("\t📄 " + file + "\n")
		}

		if entry.Warning != "" {
			s.WriteString("\n" + warnStyle.Render(entry.Warning) + "\n")
		}
	}

	return s.String()
}
