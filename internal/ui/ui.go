package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/tylersense-ui/Bitburner-Scripts/internal/targets"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/text"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/util"
)

const (
	viewTiers    = "tiers"
	viewSettings = "settings"
	viewReport   = "report"
	viewHelp     = "help"
)

var primaryViews = []string{viewTiers, viewSettings, viewReport}

type model struct {
	version string
	view    string
	tier    int
	theme   string
	styles  styles
	width   int
	height  int

	// report view
	report       string
	reportErr    error
	scrollOffset int
}

func initialModel(cfg util.Config, version string) model {
	theme := cfg.Theme
	if _, ok := palettes[theme]; !ok {
		theme = util.DefaultTheme
	}
	return model{
		version: version,
		view:    viewTiers,
		theme:   theme,
		styles:  newStyles(paletteFor(theme)),
		width:   80,
	}
}

func (m model) currentTier() targets.Tier { return targets.AllTiers[m.tier] }

// tea.Model implementation ---------------------------------------------------
func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	if m.view == viewReport && m.report == "" && m.reportErr == nil {
		m.report, m.reportErr = renderMarkdown(text.Report(), m.width)
	}
	return m, cmd
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.report, m.reportErr = "", nil
		return m, nil
	case tea.KeyMsg:
		k := msg.String()
		switch k {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "?":
			if m.view == viewHelp {
				m.view = viewTiers
			} else {
				m.view = viewHelp
			}
			return m, nil
		case "esc":
			m.view = viewTiers
			return m, nil
		case "tab":
			m.cyclePrimaryViews(1)
			return m, nil
		case "shift+tab":
			m.cyclePrimaryViews(-1)
			return m, nil
		case "t":
			m.theme = nextThemeName(m.theme, 1)
			m.styles = newStyles(paletteFor(m.theme))
			return m, nil
		case "1", "2", "3", "4":
			m.view = viewTiers
			m.tier = int(k[0] - '1')
			return m, nil
		}
		switch m.view {
		case viewTiers:
			switch k {
			case "right", "l":
				m.tier = (m.tier + 1) % len(targets.AllTiers)
			case "left", "h":
				m.tier = (m.tier + len(targets.AllTiers) - 1) % len(targets.AllTiers)
			}
		case viewReport:
			switch k {
			case "down", "j":
				m.scrollOffset++
			case "up", "k":
				m.scrollOffset--
			case "pgdown", "ctrl+f":
				m.scrollOffset += 12
			case "pgup", "ctrl+b":
				m.scrollOffset -= 12
			case "home":
				m.scrollOffset = 0
			}
			if m.scrollOffset < 0 {
				m.scrollOffset = 0
			}
		}
	}
	return m, nil
}

func (m *model) cyclePrimaryViews(step int) {
	idx := 0
	for i, v := range primaryViews {
		if v == m.view {
			idx = i
			break
		}
	}
	idx = (idx + step + len(primaryViews)) % len(primaryViews)
	m.view = primaryViews[idx]
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("bbtargets "+m.version) + "  " + m.renderTabs() + "\n\n")
	switch m.view {
	case viewTiers:
		b.WriteString(m.renderTier())
	case viewSettings:
		b.WriteString(m.renderSettings())
	case viewReport:
		b.WriteString(m.renderReport())
	case viewHelp:
		b.WriteString(m.renderHelp())
	}
	b.WriteString("\n" + m.styles.help.Render("tab views · ←/→ tiers · 1-4 jump · t theme ("+m.theme+") · ? help · q quit"))
	return b.String()
}

func (m model) renderTabs() string {
	parts := make([]string, 0, len(primaryViews))
	for _, v := range primaryViews {
		if v == m.view {
			parts = append(parts, m.styles.tabOn.Render(v))
		} else {
			parts = append(parts, m.styles.tab.Render(v))
		}
	}
	return strings.Join(parts, "")
}

func (m model) renderTier() string {
	t := m.currentTier()
	hosts, err := targets.Targets(t)
	if err != nil {
		return m.styles.errorMsg.Render(err.Error())
	}
	var b strings.Builder
	for i, tt := range targets.AllTiers {
		label := fmt.Sprintf("%d %s", i+1, tt)
		if tt == t {
			b.WriteString(m.styles.tabOn.Render(label))
		} else {
			b.WriteString(m.styles.tab.Render(label))
		}
	}
	b.WriteString("\n")
	var list strings.Builder
	for i, h := range hosts {
		list.WriteString(m.styles.index.Render(fmt.Sprintf("%d.", i+1)) + " " + m.styles.host.Render(h) + "\n")
	}
	b.WriteString(m.styles.panel.Render(strings.TrimRight(list.String(), "\n")))
	b.WriteString("\n")
	return b.String()
}

func (m model) renderSettings() string {
	s := targets.Recommended()
	var b strings.Builder
	for _, g := range targets.AllSettingGroups {
		var body strings.Builder
		body.WriteString(m.styles.title.Render(string(g)) + "\n")
		for _, k := range targets.KeysFor(g) {
			v, _ := s.Value(g, k)
			body.WriteString(m.styles.key.Render(string(k)) + m.styles.value.Render(fmt.Sprintf("%g", v)) + "\n")
		}
		b.WriteString(m.styles.panel.Render(strings.TrimRight(body.String(), "\n")) + "\n")
	}
	return b.String()
}

// renderReport shows the glamour-rendered report clipped to the window
// height at the current scroll offset.
func (m model) renderReport() string {
	if m.reportErr != nil {
		return m.styles.errorMsg.Render("render failed: " + m.reportErr.Error())
	}
	lines := strings.Split(m.report, "\n")
	if m.height <= 4 {
		return m.report
	}
	visible := m.height - 4
	maxScroll := len(lines) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	offset := m.scrollOffset
	if offset > maxScroll {
		offset = maxScroll
	}
	end := offset + visible
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[offset:end], "\n")
}

func (m model) renderHelp() string {
	return m.styles.panel.Render(strings.Join([]string{
		"tab / shift+tab   switch between tiers, settings and report",
		"left/right, h/l   previous / next tier",
		"1-4               jump to EARLY, MID, LATE, ENDGAME",
		"j/k, pgup/pgdown  scroll the report",
		"t                 cycle colour theme",
		"esc               back to tiers",
		"q, ctrl+c         quit",
	}, "\n")) + "\n"
}

func renderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
