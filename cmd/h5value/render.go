package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robert-malhotra/h5value/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0E68C"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Lists with at most this many scalar items are printed on one line.
const inlineItems = 8

func renderTree(v value.Value) string {
	var b strings.Builder
	b.WriteString(keyStyle.Render("/"))
	b.WriteByte('\n')
	renderChildren(&b, v, "")
	return b.String()
}

func renderChildren(b *strings.Builder, v value.Value, prefix string) {
	type child struct {
		label string
		v     value.Value
	}
	var children []child
	switch v.Kind() {
	case value.KindRecord:
		for name, field := range v.AsRecord().All() {
			children = append(children, child{keyStyle.Render(name), field})
		}
	case value.KindList:
		for i, item := range v.Items() {
			children = append(children, child{metaStyle.Render("[" + strconv.Itoa(i) + "]"), item})
		}
	}

	for i, c := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		b.WriteString(prefix + branch + c.label)
		if inline(c.v) {
			b.WriteString(": " + preview(c.v))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(" " + metaStyle.Render(summary(c.v)))
		b.WriteByte('\n')
		renderChildren(b, c.v, prefix+indent)
	}
}

// inline reports whether v fits on its parent's line.
func inline(v value.Value) bool {
	switch v.Kind() {
	case value.KindRecord:
		return v.Len() == 0
	case value.KindList:
		if v.Len() > inlineItems {
			return false
		}
		for _, item := range v.Items() {
			if item.Kind() == value.KindList || item.Kind() == value.KindRecord {
				return false
			}
		}
	}
	return true
}

func preview(v value.Value) string {
	switch v.Kind() {
	case value.KindInt, value.KindUint, value.KindFloat, value.KindBool:
		return numberStyle.Render(v.String())
	case value.KindString:
		return stringStyle.Render(v.String())
	case value.KindList:
		if !inline(v) {
			return metaStyle.Render(summary(v))
		}
		parts := make([]string, v.Len())
		for i, item := range v.Items() {
			parts[i] = preview(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.KindRecord:
		if v.Len() == 0 {
			return "{}"
		}
		return metaStyle.Render(summary(v))
	}
	return metaStyle.Render("null")
}

func summary(v value.Value) string {
	switch v.Kind() {
	case value.KindRecord:
		return fmt.Sprintf("{%d fields}", v.Len())
	case value.KindList:
		return fmt.Sprintf("[%d items]", v.Len())
	}
	return v.Kind().String()
}
