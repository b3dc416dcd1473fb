package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/model"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/tui/theme"
)

// openWeights shows one percentage input per category of the current table.
func (a *App) openWeights() tea.Cmd {
	weights := a.sess.TableStatus().Weights
	a.weightInputs = make([]textinput.Model, len(weights))
	for i, w := range weights {
		ti := textinput.New()
		ti.CharLimit = 8
		ti.Width = 10
		ti.Placeholder = "0"
		ti.SetValue(formatInput(w.Percent))
		a.weightInputs[i] = ti
	}
	a.mode = viewWeights
	return a.setWeightFocus(0)
}

func (a *App) setWeightFocus(i int) tea.Cmd {
	if len(a.weightInputs) == 0 {
		return nil
	}
	a.weightFocus = (i + len(a.weightInputs)) % len(a.weightInputs)
	for j := range a.weightInputs {
		a.weightInputs[j].Blur()
	}
	return a.weightInputs[a.weightFocus].Focus()
}

func (a App) updateWeights(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = viewCalculator
		return a, nil
	case "tab", "down", "enter":
		cmd := a.setWeightFocus(a.weightFocus + 1)
		return a, cmd
	case "shift+tab", "up":
		cmd := a.setWeightFocus(a.weightFocus - 1)
		return a, cmd
	case "ctrl+r":
		a.sess.ResetWeights()
		for i, w := range a.sess.TableStatus().Weights {
			if i < len(a.weightInputs) {
				a.weightInputs[i].SetValue(formatInput(w.Percent))
			}
		}
		return a, nil
	case "ctrl+s":
		a.saveWeights()
		return a, nil
	}

	if len(a.weightInputs) == 0 {
		return a, nil
	}
	before := a.weightInputs[a.weightFocus].Value()
	var cmd tea.Cmd
	a.weightInputs[a.weightFocus], cmd = a.weightInputs[a.weightFocus].Update(msg)
	if a.weightInputs[a.weightFocus].Value() != before {
		a.applyWeights()
	}
	return a, cmd
}

// applyWeights pushes the edited percentages into the session table.
func (a *App) applyWeights() {
	weights := a.sess.TableStatus().Weights
	for i := range weights {
		if i < len(a.weightInputs) {
			weights[i].Percent = parsePercent(a.weightInputs[i].Value())
		}
	}
	if a.sess.SetWeights(weights) {
		a.notice.Notify("Allocation total "+a.sess.TableStatus().Total, notify.Success)
	}
}

// parsePercent reads a weight input. Empty is zero; anything unreadable is
// NaN so the table reports invalid.
func parsePercent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// saveWeights writes a valid table to the config file.
func (a *App) saveWeights() {
	st := a.sess.TableStatus()
	if !st.Valid {
		a.notice.Notify(st.Warning+". Fix the table before saving.", notify.Error)
		return
	}
	a.cfg.Allocation.Categories = st.Weights
	if err := config.Save(a.cfg, a.opts.ConfigPath); err != nil {
		a.notice.Notify("Could not save config: "+err.Error(), notify.Warning)
		return
	}
	a.notice.Notify("Allocation weights saved", notify.Success)
}

// sameWeights reports whether two tables carry the same keys and shares.
func sameWeights(x, y []model.CategoryWeight) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Key != y[i].Key || math.Abs(x[i].Percent-y[i].Percent) > 1e-9 {
			return false
		}
	}
	return true
}

func (a App) viewWeights() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Width(28)
	focusLabel := labelStyle.Foreground(t.BorderAccent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Allocation weights"))
	b.WriteString("\n\n")
	for i, w := range a.sess.TableStatus().Weights {
		if i >= len(a.weightInputs) {
			break
		}
		style := labelStyle
		if i == a.weightFocus {
			style = focusLabel
		}
		b.WriteString(style.Render(w.DisplayName))
		b.WriteString(a.weightInputs[i].View())
		b.WriteString(dimStyle.Render(" %"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(a.viewTableStatus())
	b.WriteString("\n\n")
	b.WriteString(a.viewNotice())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab next  ctrl+s save to config  ctrl+r reset  esc back"))
	return b.String()
}
