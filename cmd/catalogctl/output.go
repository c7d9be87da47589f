package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/pribylovaa/go-catalog/internal/http/views"
	"github.com/pribylovaa/go-catalog/internal/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	premiumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// encode пишет v в json/yaml. Для table вызывающий рисует сам.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not an encoding", format)
	}
}

// entriesTable — таблица страницы листинга.
func entriesTable(v models.View) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "NAME", "VIEWS", "CREATED")

	for _, e := range v.Items {
		t.Row(strconv.FormatInt(e.ID, 10), e.Name, views.CompactNumber(e.Views), views.FormatDate(e))
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("page %d/%d · %d total", v.Page, v.TotalPages, v.Total)))
	b.WriteString("\n")

	return b.String()
}

// keyValues — выравненный список "ключ: значение".
func keyValues(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(headerStyle.Render(r[0] + ":"))
		b.WriteString(strings.Repeat(" ", width-lipgloss.Width(r[0])+1))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	return b.String()
}

func userLine(u models.User) string {
	s := u.Name
	if u.IsPremium {
		s += " " + premiumStyle.Render("Premium")
	}

	return s
}
