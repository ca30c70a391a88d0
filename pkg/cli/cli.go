/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cli is the modbus-admin operator console: an interactive bubbletea
// view over the controller plus one-shot subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greenliquidlight/modservice/pkg/controller"
	"github.com/greenliquidlight/modservice/pkg/models"
	"github.com/greenliquidlight/modservice/pkg/registers"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

type pane int

const (
	paneServers pane = iota
	paneCoils
	paneHolding
	paneCount
)

const (
	formPort = iota
	formUnitID
	formCoils
	formHolding
	formFields
)

const (
	visibleRows = 16
	appPadding  = 2
	inputWidth  = 12
)

var formLabels = [formFields]string{"Port", "Unit id", "Coils", "Holding"}

type refreshedMsg struct{ err error }

type createdMsg struct {
	rec *models.ServerRecord
	err error
}

type registerMsg struct {
	kind   models.RegisterKind
	status controller.Status
	err    error
}

// Styling with lipgloss (for TUI mode).
func newStyles() tuiStyles {
	return tuiStyles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		pane: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaComment)),
		focusedPane: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaCyan)),
		card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(draculaComment)).
			Foreground(lipgloss.Color(draculaForeground)),
		activeCard: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(draculaPink)).
			Foreground(lipgloss.Color(draculaForeground)).
			Bold(true),
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPurple)).
			Bold(true),
		dirty: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)).
			Bold(true),
		cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)).
			Bold(true),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		guidance: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
		alert: lipgloss.NewStyle().
			Padding(1, appPadding).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(draculaRed)).
			Foreground(lipgloss.Color(draculaForeground)),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)),
	}
}

type model struct {
	ctrl    *controller.Controller
	ctx     context.Context
	timeout time.Duration
	gateway string

	focus        pane
	serverCursor int
	rowCursor    map[models.RegisterKind]int

	editing   bool
	editInput textinput.Model
	editErr   string

	creating  bool
	form      []textinput.Model
	formFocus int
	formErr   string

	alert       string
	busy        string
	pending     map[models.RegisterKind]string
	copyMessage string
	canCopy     bool
	styles      tuiStyles
}

func newInput(placeholder string, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = width
	in.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))
	in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground))
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))

	return in
}

func initialModel(ctx context.Context, ctrl *controller.Controller, gatewayURL string, timeout time.Duration) *model {
	canCopy := true
	if err := clipboard.WriteAll(""); err != nil {
		canCopy = false
	}

	return &model{
		ctrl:      ctrl,
		ctx:       ctx,
		timeout:   timeout,
		gateway:   gatewayURL,
		focus:     paneServers,
		rowCursor: make(map[models.RegisterKind]int, len(models.RegisterKinds)),
		pending:   make(map[models.RegisterKind]string, len(models.RegisterKinds)),
		editInput: newInput("0-65535", inputWidth),
		canCopy:   canCopy,
		styles:    newStyles(),
	}
}

// RunInteractive runs the console until the operator quits.
func RunInteractive(ctx context.Context, ctrl *controller.Controller, cfg *Config) error {
	p := tea.NewProgram(initialModel(ctx, ctrl, cfg.GatewayURL, time.Duration(cfg.Timeout)),
		tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func (m *model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		m.handleRefreshed(msg)

		return m, nil
	case createdMsg:
		m.handleCreated(msg)

		return m, nil
	case registerMsg:
		delete(m.pending, msg.kind)

		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd

	switch {
	case m.editing:
		m.editInput, cmd = m.editInput.Update(msg)
	case m.creating:
		m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	}

	return m, cmd
}

func (m *model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch {
	case m.alert != "":
		return m.handleAlertKey(msg)
	case m.creating:
		return m.handleFormKey(msg)
	case m.editing:
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q", "esc":
		return m.quit()
	case "tab":
		m.focus = (m.focus + 1) % paneCount
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		return m.handleEnter()
	case " ":
		m.toggleCoil()
	case "r":
		return m, m.registerCmds(m.readCmd)
	case "w":
		return m, m.registerCmds(m.writeCmd)
	case "n":
		return m.openForm()
	case "R":
		return m, m.refreshCmd()
	case "y":
		m.copyEndpoint()
	}

	return m, nil
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

func (m *model) handleAlertKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // every other key is ignored while the alert is shown
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.alert = ""
	}

	return m, nil
}

func (m *model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.focus {
	case paneServers:
		m.selectServer()
	case paneCoils:
		m.toggleCoil()
	case paneHolding:
		return m.openEdit()
	case paneCount:
	}

	return m, nil
}

func (m *model) focusedKind() (models.RegisterKind, bool) {
	switch m.focus {
	case paneCoils:
		return models.KindCoils, true
	case paneHolding:
		return models.KindHolding, true
	case paneServers, paneCount:
	}

	return "", false
}

func (m *model) moveCursor(delta int) {
	if kind, ok := m.focusedKind(); ok {
		m.rowCursor[kind] = clamp(m.rowCursor[kind]+delta, m.ctrl.Snapshot(kind).Size())

		return
	}

	m.serverCursor = clamp(m.serverCursor+delta, len(m.ctrl.Servers()))
}

func (m *model) selectServer() {
	servers := m.ctrl.Servers()
	if m.serverCursor >= len(servers) {
		return
	}

	if err := m.ctrl.SelectServer(servers[m.serverCursor].ID); err != nil {
		m.alert = errorDetail(err)

		return
	}

	clear(m.rowCursor)
	m.copyMessage = ""
}

// toggleCoil flips the edit value of the coil under the cursor.
func (m *model) toggleCoil() {
	if m.focus != paneCoils {
		return
	}

	snap := m.ctrl.Snapshot(models.KindCoils)
	addr := m.rowCursor[models.KindCoils]

	if addr >= snap.Size() {
		return
	}

	next := strconv.FormatBool(!snap.Edits[addr].Bool())
	if _, err := m.ctrl.RecordEdit(models.KindCoils, addr, next); err != nil {
		m.alert = errorDetail(err)
	}
}

func (m *model) openEdit() (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot(models.KindHolding)
	addr := m.rowCursor[models.KindHolding]

	if addr >= snap.Size() {
		return m, nil
	}

	m.editing = true
	m.editErr = ""
	m.editInput.SetValue(snap.Edits[addr].String())
	m.editInput.CursorEnd()

	return m, m.editInput.Focus()
}

func (m *model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // Default case handles all unlisted keys
	switch msg.Type {
	case tea.KeyEsc:
		m.closeEdit()

		return m, nil
	case tea.KeyEnter:
		addr := m.rowCursor[models.KindHolding]
		if _, err := m.ctrl.RecordEdit(models.KindHolding, addr, m.editInput.Value()); err != nil {
			m.editErr = errorDetail(err)

			return m, nil
		}

		m.closeEdit()

		return m, nil
	default:
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)

		return m, cmd
	}
}

func (m *model) closeEdit() {
	m.editing = false
	m.editErr = ""
	m.editInput.Blur()
}

func (m *model) openForm() (tea.Model, tea.Cmd) {
	def := models.DefaultServerSpec()
	values := [formFields]int{def.Port, def.UnitID, def.CoilsSize, def.HoldingSize}

	m.form = make([]textinput.Model, formFields)
	for i := range m.form {
		m.form[i] = newInput(strconv.Itoa(values[i]), inputWidth)
		m.form[i].SetValue(strconv.Itoa(values[i]))
	}

	m.creating = true
	m.formFocus = formPort
	m.formErr = ""

	return m, m.form[formPort].Focus()
}

func (m *model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.creating = false

		return m, nil
	case "tab", "down":
		return m, m.focusField((m.formFocus + 1) % formFields)
	case "shift+tab", "up":
		return m, m.focusField((m.formFocus + formFields - 1) % formFields)
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)

	return m, cmd
}

func (m *model) focusField(i int) tea.Cmd {
	m.form[m.formFocus].Blur()
	m.formFocus = i

	return m.form[i].Focus()
}

func (m *model) submitForm() (tea.Model, tea.Cmd) {
	var fields [formFields]int

	for i := range m.form {
		n, err := strconv.Atoi(strings.TrimSpace(m.form[i].Value()))
		if err != nil {
			m.formErr = formLabels[i] + " must be a number"

			return m, nil
		}

		fields[i] = n
	}

	spec := models.ServerSpec{
		Port:        fields[formPort],
		UnitID:      fields[formUnitID],
		CoilsSize:   fields[formCoils],
		HoldingSize: fields[formHolding],
	}

	if err := spec.Validate(); err != nil {
		m.formErr = err.Error()

		return m, nil
	}

	m.creating = false

	return m, m.createCmd(spec)
}

func (m *model) copyEndpoint() {
	active, ok := m.ctrl.Active()

	switch {
	case !ok:
		m.copyMessage = controller.MsgSelectServer
	case !m.canCopy:
		m.copyMessage = "Clipboard unavailable. Endpoint: " + active.Endpoint()
	default:
		if err := clipboard.WriteAll(active.Endpoint()); err != nil {
			m.copyMessage = "Failed to copy: " + err.Error()

			return
		}

		m.copyMessage = "Copied " + active.Endpoint() + " to clipboard!"
	}
}

func (m *model) handleRefreshed(msg refreshedMsg) {
	m.busy = ""

	if msg.err != nil {
		m.alert = "Failed to load servers: " + errorDetail(msg.err)
	}

	m.syncServerCursor()
}

func (m *model) handleCreated(msg createdMsg) {
	m.busy = ""

	if msg.err != nil {
		m.alert = "Failed to create server: " + errorDetail(msg.err)
	}

	m.syncServerCursor()
}

// syncServerCursor puts the cursor on the active card.
func (m *model) syncServerCursor() {
	servers := m.ctrl.Servers()

	if active, ok := m.ctrl.Active(); ok {
		for i := range servers {
			if servers[i].ID == active.ID {
				m.serverCursor = i

				return
			}
		}
	}

	m.serverCursor = clamp(m.serverCursor, len(servers))
}

func (m *model) withTimeout() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(m.ctx)
	}

	return context.WithTimeout(m.ctx, m.timeout)
}

func (m *model) refreshCmd() tea.Cmd {
	m.busy = "Loading servers..."
	ctrl := m.ctrl

	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()

		return refreshedMsg{err: ctrl.Refresh(ctx)}
	}
}

func (m *model) createCmd(spec models.ServerSpec) tea.Cmd {
	m.busy = "Creating server..."
	ctrl := m.ctrl

	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()

		rec, err := ctrl.CreateServer(ctx, spec)

		return createdMsg{rec: rec, err: err}
	}
}

// registerCmds runs op for the focused register pane, or for both when the
// server pane has focus.
func (m *model) registerCmds(op func(models.RegisterKind) tea.Cmd) tea.Cmd {
	if kind, ok := m.focusedKind(); ok {
		return op(kind)
	}

	cmds := make([]tea.Cmd, 0, len(models.RegisterKinds))
	for _, kind := range models.RegisterKinds {
		cmds = append(cmds, op(kind))
	}

	return tea.Batch(cmds...)
}

func (m *model) readCmd(kind models.RegisterKind) tea.Cmd {
	m.pending[kind] = "Reading..."

	return m.registerCmd(kind, m.ctrl.Read)
}

func (m *model) writeCmd(kind models.RegisterKind) tea.Cmd {
	m.pending[kind] = "Writing..."

	return m.registerCmd(kind, m.ctrl.Write)
}

func (m *model) registerCmd(
	kind models.RegisterKind, op func(context.Context, models.RegisterKind) (controller.Status, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()

		st, err := op(ctx, kind)

		return registerMsg{kind: kind, status: st, err: err}
	}
}

func (m *model) View() string {
	if m.alert != "" {
		return m.styles.alert.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.styles.error.Render(m.alert),
			"",
			m.styles.muted.Render("Press Enter to dismiss"),
		))
	}

	if m.creating {
		return m.renderForm()
	}

	header := m.styles.title.Render("Modbus Admin") + "  " + m.styles.muted.Render(m.gateway)
	if m.busy != "" {
		header += "  " + m.styles.hint.Render(m.busy)
	}

	tables := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderRegisters(models.KindCoils, paneCoils),
		" ",
		m.renderRegisters(models.KindHolding, paneHolding),
	)

	sections := []string{header, m.renderServers(), tables}

	if m.copyMessage != "" {
		sections = append(sections, m.styles.success.Render(m.copyMessage))
	}

	sections = append(sections, m.styles.muted.Render(
		"tab: pane • ↑/↓: move • enter: select/edit • space: toggle • r: read • w: write • n: new • R: refresh • y: copy • q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.focusedPane
	}

	return m.styles.pane
}

func (m *model) renderServers() string {
	servers := m.ctrl.Servers()
	title := m.styles.header.Render("Servers")

	if len(servers) == 0 {
		return m.paneStyle(paneServers).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, m.styles.muted.Render("No servers yet. Press n to create one.")))
	}

	active, hasActive := m.ctrl.Active()
	cards := make([]string, 0, len(servers))

	for i := range servers {
		s := &servers[i]

		style := m.styles.card
		if hasActive && s.ID == active.ID {
			style = m.styles.activeCard
		}

		marker := "  "
		if m.focus == paneServers && i == m.serverCursor {
			marker = m.styles.cursor.Render("› ")
		}

		cards = append(cards, marker+style.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.Endpoint(),
			fmt.Sprintf("Unit %d · %s", s.UnitID, s.Status),
		)))
	}

	return m.paneStyle(paneServers).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, lipgloss.JoinHorizontal(lipgloss.Top, cards...)))
}

func (m *model) renderRegisters(kind models.RegisterKind, p pane) string {
	snap := m.ctrl.Snapshot(kind)
	lines := []string{m.styles.header.Render(strings.ToUpper(kind.Noun()[:1]) + kind.Noun()[1:])}

	if snap.Size() == 0 {
		lines = append(lines, m.styles.muted.Render("No "+kind.Noun()+"."))
	} else {
		lines = append(lines, m.styles.muted.Render(fmt.Sprintf("%5s  %-8s %-8s", "ADDR", "BASE", "EDIT")))
		lines = append(lines, m.renderRows(kind, p, snap)...)
	}

	lines = append(lines, m.renderStatus(kind))

	if kind == models.KindHolding && m.editing {
		lines = append(lines, m.editInput.View())
		if m.editErr != "" {
			lines = append(lines, m.styles.error.Render(m.editErr))
		}
	}

	return m.paneStyle(p).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *model) renderRows(kind models.RegisterKind, p pane, snap registers.Snapshot) []string {
	cursor := m.rowCursor[kind]
	start := (cursor / visibleRows) * visibleRows
	end := min(start+visibleRows, snap.Size())
	rows := make([]string, 0, end-start)

	for addr := start; addr < end; addr++ {
		row := fmt.Sprintf("%5d  %-8s %-8s", addr, cellText(snap.Baseline[addr]), cellText(snap.Edits[addr]))

		marker := " "
		if snap.Dirty(addr) {
			marker = m.styles.dirty.Render("*")
		}

		if m.focus == p && addr == cursor {
			row = m.styles.cursor.Render(row)
		}

		rows = append(rows, row+" "+marker)
	}

	return rows
}

func (m *model) renderStatus(kind models.RegisterKind) string {
	if pending, ok := m.pending[kind]; ok {
		return m.styles.hint.Render(pending)
	}

	st := m.ctrl.Status(kind)

	switch st.Level {
	case controller.LevelGuidance:
		return m.styles.guidance.Render(st.Message)
	case controller.LevelSuccess:
		return m.styles.success.Render(st.Message)
	case controller.LevelError:
		return m.styles.error.Render(st.Message)
	case controller.LevelNone:
	}

	return ""
}

func (m *model) renderForm() string {
	lines := []string{m.styles.title.Render("New server"), ""}

	for i := range m.form {
		label := fmt.Sprintf("%-8s", formLabels[i])
		if i == m.formFocus {
			label = m.styles.cursor.Render(label)
		}

		lines = append(lines, label+" "+m.form[i].View())
	}

	if m.formErr != "" {
		lines = append(lines, "", m.styles.error.Render(m.formErr))
	}

	lines = append(lines, "", m.styles.muted.Render("tab: next field • enter: create • esc: cancel"))

	return m.styles.focusedPane.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// cellText renders coils as 1/0 so the columns stay narrow.
func cellText(v models.RegisterValue) string {
	if v.Kind() == models.KindCoils {
		if v.Bool() {
			return "1"
		}

		return "0"
	}

	return v.String()
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}

	if i >= n {
		return n - 1
	}

	return i
}
