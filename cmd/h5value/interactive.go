package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robert-malhotra/h5value/value"
)

type entry struct {
	name string
	v    value.Value
}

type frame struct {
	name     string
	v        value.Value
	selected int
}

type explorerModel struct {
	filename string
	stack    []frame
	entries  []entry
	filter   textinput.Model
	selected int
	height   int
}

func newExplorerModel(filename string, root value.Value) *explorerModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	m := &explorerModel{
		filename: filename,
		stack:    []frame{{name: "", v: root}},
		filter:   ti,
		height:   20,
	}
	m.refresh()
	return m
}

func (m *explorerModel) Init() tea.Cmd {
	return nil
}

func (m *explorerModel) current() value.Value {
	return m.stack[len(m.stack)-1].v
}

// refresh rebuilds the visible entries of the current node.
func (m *explorerModel) refresh() {
	m.entries = m.entries[:0]
	query := strings.ToLower(m.filter.Value())
	add := func(name string, v value.Value) {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			m.entries = append(m.entries, entry{name, v})
		}
	}
	v := m.current()
	switch v.Kind() {
	case value.KindRecord:
		for name, field := range v.AsRecord().All() {
			add(name, field)
		}
	case value.KindList:
		for i, item := range v.Items() {
			add("["+strconv.Itoa(i)+"]", item)
		}
	}
	if m.selected >= len(m.entries) {
		m.selected = max(len(m.entries)-1, 0)
	}
}

func (m *explorerModel) enter() {
	if len(m.entries) == 0 {
		return
	}
	e := m.entries[m.selected]
	if k := e.v.Kind(); k != value.KindRecord && k != value.KindList {
		return
	}
	m.stack[len(m.stack)-1].selected = m.selected
	m.stack = append(m.stack, frame{name: e.name, v: e.v})
	m.selected = 0
	m.filter.SetValue("")
	m.refresh()
}

func (m *explorerModel) back() {
	if len(m.stack) == 1 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
	m.filter.SetValue("")
	m.selected = m.stack[len(m.stack)-1].selected
	m.refresh()
}

func (m *explorerModel) path() string {
	var parts []string
	for _, f := range m.stack[1:] {
		parts = append(parts, f.name)
	}
	return "/" + strings.Join(parts, "/")
}

func (m *explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 3)
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.refresh()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.entries)-1 {
				m.selected++
			}
		case "enter", "right", "l":
			m.enter()
		case "esc", "backspace", "left", "h":
			m.back()
		case "/":
			return m, m.filter.Focus()
		}
	}
	return m, nil
}

func (m *explorerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("h5value"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	b.WriteString(keyStyle.Render(m.path()))
	b.WriteString(" ")
	b.WriteString(metaStyle.Render(summary(m.current())))
	b.WriteString("\n\n")

	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.entries) == 0 {
		b.WriteString(metaStyle.Render("(empty)"))
		b.WriteString("\n")
	}

	start := 0
	if m.selected >= m.height {
		start = m.selected - m.height + 1
	}
	end := min(start+m.height, len(m.entries))
	for i := start; i < end; i++ {
		e := m.entries[i]
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + e.name))
		} else {
			b.WriteString("  " + keyStyle.Render(e.name))
		}
		b.WriteString("  ")
		b.WriteString(preview(e.v))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter open • esc back • / filter • q quit"))
	return b.String()
}

func runInteractive(filename string, root value.Value) error {
	p := tea.NewProgram(newExplorerModel(filename, root), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
