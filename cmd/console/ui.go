package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/rando-engine/internal/handlers"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

const (
	PlaceHolderText = "Node name to search from, or /help..."
	defaultStart    = "Ship"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config         *ConsoleConfig
	client         *http.Client
	outputViewport viewport.Model
	metaViewport   viewport.Model
	textarea       textarea.Model
	ready          bool
	width          int
	height         int
	err            error
	loading        bool

	// Query state
	world   string
	items   []string
	techs   []string
	start   string
	origin  *[2]int
	entries []entry
	last    *handlers.LocationsResponse

	// World selection state
	showWorldModal bool
	worlds         []string
	selectedWorld  int
	loadingWorlds  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type entryKind int

const (
	entryInfo entryKind = iota
	entryCommand
	entryResult
	entryError
)

type entry struct {
	kind  entryKind
	title string
	body  string
}

type worldsLoadedMsg struct {
	worlds []string
	err    error
}

type locationsMsg struct {
	response *handlers.LocationsResponse
	err      error
}

type abilitiesMsg struct {
	response *handlers.AbilitiesResponse
	err      error
}

type itemsMsg struct {
	response *handlers.ItemsResponse
	err      error
}

type jobMsg struct {
	response *handlers.JobResponse
	err      error
}

type progressTickMsg struct{}

var (
	outputPanelStyle = lipgloss.NewStyle().
				PaddingTop(2).
				PaddingBottom(1).
				PaddingLeft(3).
				PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

// displayName turns a world directory name such as "super_metroid" into a
// heading.
func displayName(name string) string {
	return titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	outVp := viewport.New(50, 20)
	outVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		outputViewport: outVp,
		metaViewport:   metaVp,
		start:          defaultStart,
		showWorldModal: true,
		loadingWorlds:  true,
	}
}

func (m ConsoleUI) query() *handlers.QueryRequest {
	q := &handlers.QueryRequest{
		World: m.world,
		Items: m.items,
		Techs: m.techs,
	}
	if m.origin != nil {
		q.RegionID = &m.origin[0]
		q.NodeID = &m.origin[1]
	} else {
		q.Start = m.start
	}
	return q
}

func (m ConsoleUI) originLabel() string {
	if m.origin != nil {
		return fmt.Sprintf("region %d node %d", m.origin[0], m.origin[1])
	}
	return m.start
}

func writeMetadata(m *ConsoleUI) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("QUERY") + "\n\n")

	content.WriteString("World:\n")
	content.WriteString(displayName(m.world) + "\n\n")

	content.WriteString("Origin:\n")
	content.WriteString(m.originLabel() + "\n\n")

	content.WriteString("Items:\n")
	content.WriteString(listOrNone(m.items) + "\n\n")

	content.WriteString("Techs:\n")
	content.WriteString(listOrNone(m.techs) + "\n\n")

	if m.last != nil {
		content.WriteString("Last result:\n")
		fmt.Fprintf(&content, "%d locations\n", len(m.last.Locations))
		fmt.Fprintf(&content, "%d passes\n", m.last.Passes)
		fmt.Fprintf(&content, "%d events\n", len(m.last.Events))
		if m.last.Cached {
			content.WriteString("(cached)\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Run\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy result\n")

	return content.String()
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "\n")
}

func formatLocations(resp *handlers.LocationsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d reachable from %s in %d passes", len(resp.Locations), resp.Origin.Name, resp.Passes)
	if resp.Cached {
		b.WriteString(" (cached)")
	}
	b.WriteString("\n")
	for _, loc := range resp.Locations {
		fmt.Fprintf(&b, "• %s [%d:%d]\n", loc.Name, loc.RegionID, loc.NodeID)
	}
	if len(resp.Events) > 0 {
		fmt.Fprintf(&b, "Events: %s\n", strings.Join(resp.Events, ", "))
	}
	return b.String()
}

// clipboardText renders locations one per line for pasting elsewhere.
func clipboardText(locations []world.Location) string {
	var b strings.Builder
	for _, loc := range locations {
		fmt.Fprintf(&b, "%s\t%d\t%d\n", loc.Name, loc.RegionID, loc.NodeID)
	}
	return b.String()
}

func (m *ConsoleUI) addEntry(kind entryKind, title, body string) {
	m.entries = append(m.entries, entry{kind: kind, title: title, body: body})
}

// writeOutput rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeOutput() {
	width := m.outputViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("RANDO ENGINE") + "\n\n")
	content.WriteString("Type a node name to search from it, or a command. /help lists commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		body := wordwrap.String(e.body, width)
		switch e.kind {
		case entryCommand:
			content.WriteString(commandStyle.Render(":: "+e.title) + "\n\n")
		case entryResult:
			content.WriteString(headingStyle.Render(e.title) + "\n" + resultStyle.Render(body) + "\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+body) + "\n\n")
		default:
			if e.title != "" {
				content.WriteString(headingStyle.Render(e.title) + "\n")
			}
			content.WriteString(body + "\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.outputViewport.SetContent(content.String())
	m.outputViewport.GotoBottom()
}

func (m *ConsoleUI) resize() {
	mainWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - mainWidth - 6

	m.outputViewport.Width = mainWidth - 2
	m.outputViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(mainWidth - 4)
}

func (m *ConsoleUI) refresh() {
	m.writeOutput()
	m.metaViewport.SetContent(writeMetadata(m))
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadWorlds()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showWorldModal {
		return m.updateWorldModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.outputViewport, vpCmd = m.outputViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()

			if input == "" {
				return m.run()
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.start = input
			m.origin = nil
			return m.run()
		}

	case locationsMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
		} else {
			m.last = msg.response
			m.addEntry(entryResult, "Locations", formatLocations(msg.response))
		}
		m.refresh()
		return m, nil

	case abilitiesMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
		} else {
			m.addEntry(entryResult, "Abilities", strings.Join(msg.response.Abilities, ", ")+"\n")
		}
		m.refresh()
		return m, nil

	case itemsMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
		} else {
			var b strings.Builder
			for _, loc := range msg.response.Items {
				fmt.Fprintf(&b, "• %s [%d:%d]\n", loc.Name, loc.RegionID, loc.NodeID)
			}
			m.addEntry(entryResult, fmt.Sprintf("All %d item locations", len(msg.response.Items)), b.String())
		}
		m.refresh()
		return m, nil

	case jobMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
		} else {
			m.addEntry(entryInfo, "", fmt.Sprintf("Queued job %s (%d waiting). Search again once a worker has run it.\n", msg.response.ID, msg.response.Depth))
		}
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeOutput()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.outputViewport, vpCmd = m.outputViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) run() (tea.Model, tea.Cmd) {
	m.addEntry(entryCommand, "search from "+m.originLabel(), "")
	return m.startRequest(m.fetchLocations())
}

func (m ConsoleUI) startRequest(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.loading = true
	m.progressTick = 0
	m.refresh()
	return m, tea.Batch(cmd, progressTick())
}

// splitArgs accepts comma or space separated names.
func splitArgs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	args = strings.TrimSpace(args)
	m.addEntry(entryCommand, input, "")

	switch strings.ToLower(name) {
	case "/help":
		m.addEntry(entryInfo, "Help", `Commands:
• <name> - Search from the node with that name
• Enter on an empty line - Search again
• /items Morph, Bombs - Set the collected items
• /techs canWalljump - Set the enabled techs
• /start Ship - Set the origin by node name
• /origin 8 5 - Set the origin by region and node id
• /abilities - Show the resolved ability set
• /all - List every item location in the world
• /queue - Queue the current search for a background worker
• /copy - Copy the last result to the clipboard
• /clear - Clear the transcript
• /quit - Quit
`)

	case "/items":
		m.items = splitArgs(args)
		m.addEntry(entryInfo, "", fmt.Sprintf("Items: %s\n", listOrNone(m.items)))

	case "/techs":
		m.techs = splitArgs(args)
		m.addEntry(entryInfo, "", fmt.Sprintf("Techs: %s\n", listOrNone(m.techs)))

	case "/start":
		if args == "" {
			m.addEntry(entryError, "", "/start needs a node name")
			break
		}
		m.start = args
		m.origin = nil
		m.addEntry(entryInfo, "", "Origin: "+m.start+"\n")

	case "/origin":
		fields := strings.Fields(args)
		if len(fields) != 2 {
			m.addEntry(entryError, "", "/origin needs a region id and a node id")
			break
		}
		region, err1 := strconv.Atoi(fields[0])
		node, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			m.addEntry(entryError, "", "/origin ids must be numbers")
			break
		}
		m.origin = &[2]int{region, node}
		m.addEntry(entryInfo, "", "Origin: "+m.originLabel()+"\n")

	case "/abilities":
		return m.startRequest(m.fetchAbilities())

	case "/all":
		return m.startRequest(m.fetchItems())

	case "/queue":
		return m.startRequest(m.submitJob())

	case "/copy":
		if m.last == nil {
			m.addEntry(entryError, "", "nothing to copy yet")
			break
		}
		if err := clipboard.WriteAll(clipboardText(m.last.Locations)); err != nil {
			m.addEntry(entryError, "", "clipboard: "+err.Error())
			break
		}
		m.addEntry(entryInfo, "", fmt.Sprintf("Copied %d locations.\n", len(m.last.Locations)))

	case "/clear":
		m.entries = nil

	case "/quit":
		m.showQuitModal = true

	default:
		m.addEntry(entryError, "", "unknown command "+name+", try /help")
	}

	m.refresh()
	return m, nil
}

func (m ConsoleUI) fetchLocations() tea.Cmd {
	q := m.query()
	return func() tea.Msg {
		resp, err := queryLocations(m.client, m.config.APIBaseURL, q)
		return locationsMsg{resp, err}
	}
}

func (m ConsoleUI) fetchAbilities() tea.Cmd {
	q := m.query()
	return func() tea.Msg {
		resp, err := resolveAbilities(m.client, m.config.APIBaseURL, q)
		return abilitiesMsg{resp, err}
	}
}

func (m ConsoleUI) submitJob() tea.Cmd {
	q := m.query()
	return func() tea.Msg {
		resp, err := queueJob(m.client, m.config.APIBaseURL, q)
		return jobMsg{resp, err}
	}
}

func (m ConsoleUI) fetchItems() tea.Cmd {
	worldName := m.world
	return func() tea.Msg {
		resp, err := listItems(m.client, m.config.APIBaseURL, worldName)
		return itemsMsg{resp, err}
	}
}

func (m ConsoleUI) loadWorlds() tea.Cmd {
	return func() tea.Msg {
		worlds, err := listWorlds(m.client, m.config.APIBaseURL)
		return worldsLoadedMsg{worlds, err}
	}
}

func (m ConsoleUI) updateWorldModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case worldsLoadedMsg:
		m.loadingWorlds = false
		switch {
		case msg.err != nil:
			m.err = msg.err
		case len(msg.worlds) == 0:
			m.err = fmt.Errorf("the API has no worlds")
		default:
			m.worlds = msg.worlds
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.loadingWorlds || m.err != nil {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedWorld > 0 {
				m.selectedWorld--
			}
		case tea.KeyDown:
			if m.selectedWorld < len(m.worlds)-1 {
				m.selectedWorld++
			}
		case tea.KeyEnter:
			m.world = m.worlds[m.selectedWorld]
			m.showWorldModal = false
			if m.width > 0 && m.height > 0 {
				m.resize()
			}
			m.addEntry(entryInfo, "", "Exploring "+displayName(m.world)+".\n")
			m.refresh()
			m.textarea.Focus()
			m.ready = true
			return m, textarea.Blink
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit the explorer?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderWorldModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingWorlds:
		content.WriteString(modalTitleStyle.Render("Loading Worlds..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available worlds..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load worlds: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	default:
		content.WriteString(modalTitleStyle.Render("Select a World"))
		content.WriteString("\n\n")

		for i, name := range m.worlds {
			if i == m.selectedWorld {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + displayName(name)))
			} else {
				content.WriteString(modalItemStyle.Render("  " + displayName(name)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showWorldModal {
		return m.renderWorldModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	mainWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - mainWidth - 6

	outputPanel := outputPanelStyle.Width(mainWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.outputViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(mainWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, outputPanel, metaPanel)
}

func (m ConsoleUI) renderProgressBar() string {
	usable := m.outputViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
