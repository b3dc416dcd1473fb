// Package tui provides the interactive Bubble Tea calculator for quotekit.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/logging"
	"github.com/theirongolddev/quotekit/internal/model"
	"github.com/theirongolddev/quotekit/internal/notes"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/session"
	"github.com/theirongolddev/quotekit/internal/store"
	"github.com/theirongolddev/quotekit/internal/tui/theme"
)

// Options configures the calculator.
type Options struct {
	Config     config.Config
	ConfigPath string
	Store      *store.ProjectStore
	Drafts     *store.Drafts
	Logger     *logging.Logger
	// Notifier receives every notification in addition to the status line.
	Notifier notify.Notifier
	// FirstRun shows the setup form before the calculator.
	FirstRun bool
}

// notice is the status line. The session writes to it through the
// notify.Notifier interface.
type notice struct {
	message  string
	severity notify.Severity
}

func (n *notice) Notify(message string, severity notify.Severity) {
	n.message = message
	n.severity = severity
}

type viewMode int

const (
	viewCalculator viewMode = iota
	viewProjects
	viewWeights
)

// Input slots. The notes area follows the last one in focus order.
const (
	inputName = iota
	inputAmount
	inputWithholding
	inputDiscount
	inputCount
)

const focusNotes = inputCount

const (
	minTerminalWidth = 60
	maxContentWidth  = 100
)

// App is the root Bubble Tea model.
type App struct {
	opts   Options
	cfg    config.Config
	sess   *session.Session
	editor *notes.Buffer
	notice *notice

	inputs []textinput.Model
	notes  textarea.Model
	// loadedNotes is the notes text as filled from a project. While the
	// area still shows it, the project's own HTML is kept on save.
	loadedNotes string
	focus       int
	// entry selects the amount the user types: 0 is the base price, i > 0
	// is the category at index i-1 of the table.
	entry int

	mode     viewMode
	projects []model.Project
	cursor   int

	weightInputs []textinput.Model
	weightFocus  int

	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	width  int
	height int
}

// NewApp creates the calculator model.
func NewApp(opts Options) App {
	a := App{
		opts:      opts,
		cfg:       opts.Config,
		editor:    &notes.Buffer{},
		notice:    &notice{},
		needSetup: opts.FirstRun,
	}
	a.sess = a.newSession()

	a.inputs = make([]textinput.Model, inputCount)
	for i := range a.inputs {
		ti := textinput.New()
		ti.CharLimit = 32
		ti.Width = 30
		a.inputs[i] = ti
	}
	a.inputs[inputName].CharLimit = session.MaxNameLength
	a.inputs[inputName].Placeholder = a.cfg.General.ProjectNameDefault
	a.inputs[inputWithholding].Placeholder = strconv.FormatFloat(a.cfg.Withholding.Percent, 'f', -1, 64)
	a.inputs[inputDiscount].Placeholder = "0"
	a.inputs[inputName].Focus()

	a.notes = textarea.New()
	a.notes.Placeholder = "Project details (markdown)"
	a.notes.ShowLineNumbers = false
	a.notes.SetHeight(4)
	a.notes.SetWidth(60)

	if ok, _ := a.sess.RestoreDraft(); ok {
		a.notes.SetValue(notes.PlainText(a.editor.Content()))
		a.notice.Notify("Restored unsaved notes", notify.Info)
	}

	if a.needSetup {
		a.setupVals = setupValuesFrom(a.cfg)
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

func (a App) newSession() *session.Session {
	sinks := notify.Multi{a.notice}
	if a.opts.Notifier != nil {
		sinks = append(sinks, a.opts.Notifier)
	}
	return session.New(session.Options{
		Weights:            a.cfg.Allocation.Categories,
		WithholdingPercent: a.cfg.Withholding.Percent,
		DefaultName:        a.cfg.General.ProjectNameDefault,
		Store:              a.opts.Store,
		Drafts:             a.opts.Drafts,
		Editor:             a.editor,
		Notifier:           sinks,
		Logger:             a.opts.Logger,
	})
}

// Field implements session.FormReader over the calculator inputs.
func (a App) Field(name string) string {
	switch name {
	case session.FieldProjectName:
		return a.inputs[inputName].Value()
	case session.FieldWithholding:
		return a.inputs[inputWithholding].Value()
	case session.FieldDiscount:
		return a.inputs[inputDiscount].Value()
	case a.entryKey():
		return a.inputs[inputAmount].Value()
	}
	return ""
}

func (a App) entryKey() string {
	if a.entry == 0 {
		return session.FieldTotal
	}
	weights := a.sess.TableStatus().Weights
	if a.entry-1 < len(weights) {
		return weights[a.entry-1].Key
	}
	return session.FieldTotal
}

func (a App) entryLabel() string {
	if a.entry == 0 {
		return "Base price"
	}
	weights := a.sess.TableStatus().Weights
	if a.entry-1 < len(weights) {
		return weights[a.entry-1].DisplayName + " cost"
	}
	return "Base price"
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return a.setupForm.Init()
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.notes.SetWidth(max(a.contentWidth()-4, 20))
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		switch a.mode {
		case viewProjects:
			return a.updateProjects(msg)
		case viewWeights:
			return a.updateWeights(msg)
		}
		return a.updateCalculator(msg)
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a.forward(msg)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.finishSetup()
		return a, textinput.Blink
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, textinput.Blink
	}
	return a, cmd
}

func (a *App) finishSetup() {
	a.needSetup = false
	a.setupForm = nil

	cfg, err := a.setupVals.apply(a.cfg)
	if err != nil {
		a.notice.Notify(err.Error(), notify.Error)
		return
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.sess = a.newSession()
	a.inputs[inputName].Placeholder = cfg.General.ProjectNameDefault
	a.inputs[inputWithholding].Placeholder = strconv.FormatFloat(cfg.Withholding.Percent, 'f', -1, 64)

	if err := config.Save(cfg, a.opts.ConfigPath); err != nil {
		a.notice.Notify("Could not save config: "+err.Error(), notify.Warning)
		return
	}
	a.notice.Notify("Settings saved", notify.Success)
}

func (a App) updateCalculator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "tab":
		cmd := a.setFocus((a.focus + 1) % (inputCount + 1))
		return a, cmd
	case "shift+tab":
		cmd := a.setFocus((a.focus + inputCount) % (inputCount + 1))
		return a, cmd
	case "up":
		if a.focus != focusNotes {
			cmd := a.setFocus((a.focus + inputCount) % (inputCount + 1))
			return a, cmd
		}
	case "down":
		if a.focus != focusNotes {
			cmd := a.setFocus(a.focus + 1)
			return a, cmd
		}
	case "enter":
		if a.focus != focusNotes {
			_, _ = a.sess.Recalculate(a)
			return a, nil
		}
	case "ctrl+e":
		a.entry = (a.entry + 1) % (len(a.sess.TableStatus().Weights) + 1)
		return a, nil
	case "ctrl+s":
		a.save()
		return a, nil
	case "ctrl+d":
		a.saveDraft()
		return a, nil
	case "ctrl+r":
		a.reset()
		return a, nil
	case "ctrl+p":
		a.openProjects()
		return a, nil
	case "ctrl+w":
		cmd := a.openWeights()
		return a, cmd
	}
	return a.forward(msg)
}

// forward hands msg to the focused input.
func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.focus == focusNotes {
		a.notes, cmd = a.notes.Update(msg)
		return a, cmd
	}
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return a, cmd
}

func (a *App) setFocus(i int) tea.Cmd {
	if i > focusNotes {
		i = focusNotes
	}
	a.focus = i
	for j := range a.inputs {
		a.inputs[j].Blur()
	}
	a.notes.Blur()
	if i == focusNotes {
		return a.notes.Focus()
	}
	return a.inputs[i].Focus()
}

// syncNotes converts the notes area to the editor's rich content.
func (a *App) syncNotes() bool {
	if a.loadedNotes != "" && a.notes.Value() == a.loadedNotes {
		return true
	}
	html, err := notes.FromMarkdown([]byte(a.notes.Value()))
	if err != nil {
		a.notice.Notify("Could not read the notes: "+err.Error(), notify.Error)
		return false
	}
	a.editor.SetContent(html)
	return true
}

func (a *App) save() {
	if !a.syncNotes() {
		return
	}
	_, _ = a.sess.SaveProject(a.inputs[inputName].Value())
}

func (a *App) saveDraft() {
	if !a.syncNotes() {
		return
	}
	if err := a.sess.SaveDraft(); err == nil {
		a.notice.Notify("Draft saved", notify.Info)
	}
}

func (a *App) reset() {
	a.sess.Reset()
	for i := range a.inputs {
		a.inputs[i].Reset()
	}
	a.notes.Reset()
	a.loadedNotes = ""
	a.entry = 0
	a.notice.Notify("Calculator cleared", notify.Info)
}

func (a *App) openProjects() {
	if a.opts.Store == nil {
		a.notice.Notify("Project storage is not available", notify.Error)
		return
	}
	a.projects = a.opts.Store.List()
	if a.cursor >= len(a.projects) {
		a.cursor = max(len(a.projects)-1, 0)
	}
	a.mode = viewProjects
}

func (a App) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.mode = viewCalculator
	case "j", "down":
		if a.cursor < len(a.projects)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "enter":
		if p, ok := a.selected(); ok {
			if loaded, err := a.sess.LoadProject(p.ID); err == nil {
				a.fill(loaded)
				a.mode = viewCalculator
			}
		}
	case "c":
		if p, ok := a.selected(); ok {
			_, _ = a.sess.DuplicateProject(p.ID)
			a.openProjects()
		}
	case "d", "delete":
		if p, ok := a.selected(); ok {
			_, _ = a.sess.DeleteProject(p.ID)
			a.openProjects()
		}
	}
	return a, nil
}

func (a App) selected() (model.Project, bool) {
	if a.cursor < 0 || a.cursor >= len(a.projects) {
		return model.Project{}, false
	}
	return a.projects[a.cursor], true
}

// fill puts a loaded project back into the inputs.
func (a *App) fill(p model.Project) {
	calc := p.Calculation
	a.entry = 0
	a.inputs[inputName].SetValue(p.Name)
	a.inputs[inputAmount].SetValue(formatInput(calc.Subtotal))
	a.inputs[inputWithholding].SetValue(formatInput(calc.WithholdingPercent))
	a.inputs[inputDiscount].SetValue(formatInput(calc.DiscountPercent))
	a.loadedNotes = notes.PlainText(a.editor.Content())
	a.notes.SetValue(a.loadedNotes)

	if calc.Weights != nil && !sameWeights(calc.Weights, a.sess.TableStatus().Weights) {
		a.notice.Notify(fmt.Sprintf("Loaded %q. It was priced with other allocation weights; enter recalculates with the current table.", p.Name), notify.Warning)
	}
}

func formatInput(v float64) string {
	return strconv.FormatFloat(model.Round2(v), 'f', -1, 64)
}

func (a App) contentWidth() int {
	if a.width > maxContentWidth {
		return maxContentWidth
	}
	return a.width
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	switch a.mode {
	case viewProjects:
		return a.viewProjects()
	case viewWeights:
		return a.viewWeights()
	}
	return a.viewCalculator()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	msg := fmt.Sprintf("Terminal too narrow (%d cols); need at least %d", a.width, minTerminalWidth)
	return lipgloss.NewStyle().Foreground(t.Orange).Render(msg)
}

func (a App) viewCalculator() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Width(22)
	focusLabel := labelStyle.Foreground(t.BorderAccent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("quotekit"))
	b.WriteString(dimStyle.Render("  project estimate calculator"))
	b.WriteString("\n\n")

	labels := [inputCount]string{"Project name", a.entryLabel(), "Withholding %", "Discount %"}
	for i, label := range labels {
		style := labelStyle
		if a.focus == i {
			style = focusLabel
		}
		b.WriteString(style.Render(label))
		b.WriteString(a.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(a.viewTableStatus())
	b.WriteString("\n\n")

	if calc, ok := a.sess.Current(); ok {
		b.WriteString(cli.RenderCalculation(calc, calc.Weights, a.cfg.General.Currency))
		b.WriteString("\n")
	}

	notesLabel := labelStyle
	if a.focus == focusNotes {
		notesLabel = focusLabel
	}
	b.WriteString(notesLabel.Render("Notes"))
	b.WriteString("\n")
	b.WriteString(a.notes.View())
	b.WriteString("\n\n")

	b.WriteString(a.viewNotice())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter calculate  tab next  ctrl+e entry mode  ctrl+s save  ctrl+d draft  ctrl+p projects  ctrl+w weights  ctrl+r reset  esc quit"))
	return b.String()
}

func (a App) viewTableStatus() string {
	t := theme.Active
	st := a.sess.TableStatus()
	if st.Valid {
		return lipgloss.NewStyle().Foreground(t.Green).Render("Allocation total " + st.Total)
	}
	return lipgloss.NewStyle().Foreground(t.Orange).Bold(true).
		Render(st.Warning + ". Estimates are disabled.")
}

func (a App) viewNotice() string {
	if a.notice.message == "" {
		return ""
	}
	t := theme.Active
	color := t.TextMuted
	switch a.notice.severity {
	case notify.Success:
		color = t.Green
	case notify.Warning:
		color = t.Orange
	case notify.Error:
		color = t.Red
	case notify.Info:
		color = t.Blue
	}
	return lipgloss.NewStyle().Foreground(color).Render(a.notice.message)
}

func (a App) viewProjects() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.BorderAccent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Saved projects (%s)", cli.FormatNumber(int64(len(a.projects))))))
	b.WriteString("\n\n")
	if len(a.projects) == 0 {
		b.WriteString(dimStyle.Render("No saved projects yet."))
		b.WriteString("\n")
	}
	for i, p := range a.projects {
		line := fmt.Sprintf("%-14s %-32s %-6s %s  %s", p.ID, truncStr(p.Name, 32), p.Status,
			cli.FormatDate(p.CreatedAt),
			cli.FormatCurrency(p.Calculation.FinalAmount, a.cfg.General.Currency))
		if i == a.cursor {
			b.WriteString(selStyle.Render("> " + line))
		} else {
			b.WriteString(rowStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(a.viewNotice())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter load  c duplicate  d delete  j/k move  esc back"))
	return b.String()
}

func truncStr(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
