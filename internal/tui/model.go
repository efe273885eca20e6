package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iamvkosarev/persona-chat/internal/model"
	"github.com/iamvkosarev/persona-chat/internal/observability"
	"github.com/iamvkosarev/persona-chat/internal/usecase"
	"github.com/iamvkosarev/persona-chat/pkg/local"
)

type focusID int

const (
	focusInput focusID = iota
	focusSend
	focusAPIURL
	focusAPIKey
	focusModel
	focusFetch
	focusSaveSettings
	focusCharName
	focusCharPrompt
	focusSaveCharacter
)

var (
	chatFocusOrder     = []focusID{focusInput, focusSend}
	settingsFocusOrder = []focusID{focusAPIURL, focusAPIKey, focusModel, focusFetch, focusSaveSettings}
	modalFocusOrder    = []focusID{focusCharName, focusCharPrompt, focusSaveCharacter}
)

// header, input row, status line and navigation
const chromeHeight = 4

// dispatchedMsg reports a finished controller action.
type dispatchedMsg struct {
	action usecase.Action
	err    error
}

type Deps struct {
	Conversation *usecase.ConversationUsecase
	Navigation   *usecase.ViewUsecase
	Transcript   *usecase.Transcript
	Surface      *Surface
}

type Model struct {
	Deps
	ctx      context.Context
	language local.Language

	width, height int
	focus         focusID
	alerts        []string
	models        []string
	modelIdx      int
	busy          int

	viewport   viewport.Model
	input      textinput.Model
	apiURL     textinput.Model
	apiKey     textinput.Model
	charName   textinput.Model
	charPrompt textarea.Model
	spinner    spinner.Model
}

func NewModel(ctx context.Context, deps Deps, language local.Language) *Model {
	session := deps.Conversation.Snapshot()

	input := textinput.New()
	input.Placeholder = TextInputPlaceholder.Text(language)
	input.Prompt = "> "

	apiURL := textinput.New()
	apiURL.Prompt = ""
	apiURL.Placeholder = "https://api.openai.com/v1"
	apiURL.SetValue(session.Settings.APIURL)

	apiKey := textinput.New()
	apiKey.Prompt = ""
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'
	apiKey.SetValue(session.Settings.APIKey)

	charName := textinput.New()
	charName.Prompt = ""

	charPrompt := textarea.New()
	charPrompt.ShowLineNumbers = false
	charPrompt.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		Deps:       deps,
		ctx:        ctx,
		language:   language,
		models:     session.Models,
		modelIdx:   max(0, slices.Index(session.Models, session.SelectedModel)),
		viewport:   viewport.New(80, 20),
		input:      input,
		apiURL:     apiURL,
		apiKey:     apiKey,
		charName:   charName,
		charPrompt: charPrompt,
		spinner:    sp,
	}
	m.setFocus(focusInput)
	m.refreshTranscript()
	return m
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, deps Deps, language local.Language) error {
	p := tea.NewProgram(
		NewModel(ctx, deps, language),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	deps.Surface.Attach(p)
	deps.Transcript.SetFollower(deps.Surface.Follow)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run tui: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case alertMsg:
		m.alerts = append(m.alerts, msg.text)
		return m, nil
	case clearInputMsg:
		m.input.Reset()
		return m, nil
	case modelsMsg:
		m.models = msg.models
		m.modelIdx = max(0, slices.Index(msg.models, msg.selected))
		return m, nil
	case transcriptMsg:
		m.refreshTranscript()
		return m, nil
	case dispatchedMsg:
		m.busy--
		if msg.err != nil {
			observability.WithFields("action", msg.action.Kind, "error", msg.err).Debug("action finished with error")
		}
		return m, m.syncFocus()
	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if len(m.alerts) > 0 {
		if key == "enter" || key == "esc" {
			m.alerts = m.alerts[1:]
		}
		return nil
	}

	if m.Navigation.ModalOpen() {
		return m.handleModalKey(msg)
	}

	switch key {
	case "f1":
		return m.navigate(model.PageChat)
	case "f2":
		return m.navigate(model.PageSettings)
	case "ctrl+p":
		return m.openModal()
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "enter":
		return m.activate()
	case "pgup", "pgdown":
		if m.Navigation.IsActive(model.PageChat) {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return cmd
		}
	case "left", "right":
		if m.focus == focusModel {
			delta := 1
			if key == "left" {
				delta = -1
			}
			return m.cycleModel(delta)
		}
	}
	return m.updateFocused(msg)
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.dispatchNow(usecase.CloseModalAction())
		return m.syncFocus()
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "ctrl+s":
		return m.dispatch(usecase.SaveCharacterAction(m.characterForm()))
	case "enter":
		switch m.focus {
		case focusCharName:
			return m.setFocus(focusCharPrompt)
		case focusSaveCharacter:
			return m.dispatch(usecase.SaveCharacterAction(m.characterForm()))
		}
	}
	return m.updateFocused(msg)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		if m.Navigation.IsActive(model.PageChat) && !m.Navigation.ModalOpen() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return cmd
		}
		return nil
	case tea.MouseLeft:
	default:
		return nil
	}

	if len(m.alerts) > 0 {
		return nil
	}
	if m.Navigation.ModalOpen() {
		m.dispatchNow(usecase.ClickOverlayAction(m.insideModal(msg.X, msg.Y)))
		return m.syncFocus()
	}
	if msg.Y == m.height-1 {
		if page, ok := m.navHit(msg.X); ok {
			return m.navigate(page)
		}
	}
	return nil
}

// activate runs whatever the focused control stands for. Enter in the chat input and the
// send button produce the same action.
func (m *Model) activate() tea.Cmd {
	switch m.focus {
	case focusInput, focusSend:
		return m.dispatch(usecase.SendAction(m.input.Value()))
	case focusAPIURL:
		return m.setFocus(focusAPIKey)
	case focusAPIKey, focusSaveSettings:
		return m.dispatch(usecase.SaveSettingsAction(m.settingsForm()))
	case focusModel:
		return m.cycleModel(0)
	case focusFetch:
		return m.dispatch(usecase.FetchModelsAction(m.settingsForm()))
	}
	return nil
}

func (m *Model) cycleModel(delta int) tea.Cmd {
	if len(m.models) == 0 {
		return nil
	}
	m.modelIdx = (m.modelIdx + delta + len(m.models)) % len(m.models)
	return m.dispatch(usecase.SelectModelAction(m.models[m.modelIdx]))
}

func (m *Model) navigate(page model.PageID) tea.Cmd {
	m.dispatchNow(usecase.NavigateAction(page))
	return m.syncFocus()
}

func (m *Model) openModal() tea.Cmd {
	character := m.Conversation.Snapshot().Character
	m.charName.SetValue(character.Name)
	m.charPrompt.SetValue(character.Prompt)
	m.dispatchNow(usecase.OpenModalAction())
	return m.setFocus(focusCharName)
}

// dispatch runs an action off the event loop: the controller reports back through the
// surface, which sends to this same program.
func (m *Model) dispatch(action usecase.Action) tea.Cmd {
	conv, ctx := m.Conversation, m.ctx
	run := func() tea.Msg {
		return dispatchedMsg{action: action, err: conv.Dispatch(ctx, action)}
	}
	m.busy++
	if m.busy == 1 {
		return tea.Batch(run, m.spinner.Tick)
	}
	return run
}

// dispatchNow is for view actions only, they never call back into the surface.
func (m *Model) dispatchNow(action usecase.Action) {
	if err := m.Conversation.Dispatch(m.ctx, action); err != nil {
		observability.WithFields("action", action.Kind, "error", err).Warn("view action failed")
	}
}

func (m *Model) focusOrder() []focusID {
	switch {
	case m.Navigation.ModalOpen():
		return modalFocusOrder
	case m.Navigation.IsActive(model.PageSettings):
		return settingsFocusOrder
	default:
		return chatFocusOrder
	}
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	order := m.focusOrder()
	idx := slices.Index(order, m.focus)
	if idx < 0 {
		return m.setFocus(order[0])
	}
	return m.setFocus(order[(idx+delta+len(order))%len(order)])
}

// syncFocus moves focus into the visible page or modal when it is left elsewhere.
func (m *Model) syncFocus() tea.Cmd {
	order := m.focusOrder()
	if slices.Contains(order, m.focus) {
		return nil
	}
	return m.setFocus(order[0])
}

func (m *Model) setFocus(focus focusID) tea.Cmd {
	m.focus = focus
	m.input.Blur()
	m.apiURL.Blur()
	m.apiKey.Blur()
	m.charName.Blur()
	m.charPrompt.Blur()

	switch focus {
	case focusInput:
		return m.input.Focus()
	case focusAPIURL:
		return m.apiURL.Focus()
	case focusAPIKey:
		return m.apiKey.Focus()
	case focusCharName:
		return m.charName.Focus()
	case focusCharPrompt:
		return m.charPrompt.Focus()
	}
	return nil
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	case focusAPIURL:
		m.apiURL, cmd = m.apiURL.Update(msg)
	case focusAPIKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case focusCharName:
		m.charName, cmd = m.charName.Update(msg)
	case focusCharPrompt:
		m.charPrompt, cmd = m.charPrompt.Update(msg)
	}
	return cmd
}

func (m *Model) settingsForm() model.ConnectionSettings {
	return model.ConnectionSettings{APIURL: m.apiURL.Value(), APIKey: m.apiKey.Value()}
}

func (m *Model) characterForm() model.CharacterProfile {
	return model.CharacterProfile{Name: m.charName.Value(), Prompt: m.charPrompt.Value()}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeHeight)
	m.input.Width = max(10, width-lipgloss.Width(TextSend.Text(m.language))-4)
	m.apiURL.Width = max(10, width-4)
	m.apiKey.Width = max(10, width-4)
	m.charName.Width = max(10, min(60, width-10))
	m.charPrompt.SetWidth(max(10, min(60, width-10)))
	m.refreshTranscript()
}
