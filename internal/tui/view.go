package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iamvkosarev/persona-chat/internal/model"
	"github.com/iamvkosarev/persona-chat/internal/usecase"
	"github.com/iamvkosarev/persona-chat/pkg/local"
)

func (m *Model) View() string {
	if len(m.alerts) > 0 {
		return m.place(m.alertView())
	}
	if m.Navigation.ModalOpen() {
		return m.place(m.modalView())
	}

	var page string
	if m.Navigation.IsActive(model.PageSettings) {
		page = m.settingsView()
	} else {
		page = m.chatView()
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		page,
		m.statusView(),
		m.navView(),
	)
}

func (m *Model) place(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) headerView() string {
	name := m.Conversation.Snapshot().Character.Name
	if name == "" {
		name = TextNoCharacter.Text(m.language)
	}
	return headerStyle.Render(TextTitle.Text(m.language) + " · " + name)
}

func (m *Model) chatView() string {
	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.input.View(),
		" ",
		m.button(TextSend.Text(m.language), focusSend),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), row)
}

func (m *Model) settingsView() string {
	selected := TextNoModels.Text(m.language)
	if len(m.models) > 0 {
		selected = "< " + m.models[m.modelIdx] + " >"
	}
	modelStyle := buttonStyle
	if m.focus == focusModel {
		modelStyle = focusedButtonStyle
	}

	lines := []string{
		labelStyle.Render(TextAPIURL.Text(m.language)),
		m.apiURL.View(),
		"",
		labelStyle.Render(TextAPIKey.Text(m.language)),
		m.apiKey.View(),
		"",
		labelStyle.Render(TextModel.Text(m.language)),
		modelStyle.Render(selected),
		"",
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.button(TextFetchModels.Text(m.language), focusFetch),
			" ",
			m.button(TextSave.Text(m.language), focusSaveSettings),
		),
	}
	return lipgloss.NewStyle().
		Height(max(1, m.height-chromeHeight+1)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) statusView() string {
	session := m.Conversation.Snapshot()
	selected := session.SelectedModel
	if selected == "" {
		selected = "-"
	}
	status := TextStatusFormat.Format(m.language, selected, session.PromptTokens)
	if m.busy > 0 {
		status = m.spinner.View() + " " + status
	}
	return statusStyle.Render(status + "  " + TextStatusHelp.Text(m.language))
}

func (m *Model) navItems() []string {
	items := make([]string, 0, len(model.Pages))
	for _, page := range model.Pages {
		style := navItemStyle
		if m.Navigation.IsActive(page) {
			style = activeNavItemStyle
		}
		items = append(items, style.Render(navLabel(page).Text(m.language)))
	}
	return items
}

func (m *Model) navView() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.navItems()...)
}

// navHit maps a click on the navigation line to a page.
func (m *Model) navHit(x int) (model.PageID, bool) {
	left := 0
	for i, item := range m.navItems() {
		right := left + lipgloss.Width(item)
		if x >= left && x < right {
			return model.Pages[i], true
		}
		left = right
	}
	return "", false
}

func (m *Model) modalView() string {
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(TextCharacterTitle.Text(m.language)),
		"",
		labelStyle.Render(TextCharacterName.Text(m.language)),
		m.charName.View(),
		"",
		labelStyle.Render(TextCharacterPrompt.Text(m.language)),
		m.charPrompt.View(),
		"",
		m.button(TextSave.Text(m.language), focusSaveCharacter),
	)
	return modalStyle.Render(body)
}

// insideModal reports whether a click lands on the modal box as placed by View.
func (m *Model) insideModal(x, y int) bool {
	box := m.modalView()
	width, height := lipgloss.Width(box), lipgloss.Height(box)
	left := max(0, (m.width-width)/2)
	top := max(0, (m.height-height)/2)
	return x >= left && x < left+width && y >= top && y < top+height
}

func (m *Model) alertView() string {
	return alertStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Center,
			m.alerts[0],
			"",
			labelStyle.Render(TextDismiss.Text(m.language)),
		),
	)
}

func (m *Model) button(label string, focus focusID) string {
	if m.focus == focus {
		return focusedButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func (m *Model) refreshTranscript() {
	name := m.Conversation.Snapshot().Character.Name
	entries := m.Transcript.Entries()
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		blocks = append(blocks, m.renderEntry(entry, name))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *Model) renderEntry(entry usecase.TranscriptEntry, characterName string) string {
	wrap := lipgloss.NewStyle().Width(m.viewport.Width)
	switch entry.Sender {
	case model.SenderUser:
		return wrap.Render(senderStyle.Render(TextYou.Text(m.language)+": ") + userMsgStyle.Render(entry.Text))
	case model.SenderAssistant:
		if characterName == "" {
			characterName = TextAssistant.Text(m.language)
		}
		return wrap.Render(senderStyle.Render(characterName+": ") + assistantMsgStyle.Render(entry.Text))
	default:
		return wrap.Render(errorMsgStyle.Render(entry.Text))
	}
}

func navLabel(page model.PageID) local.TextSet {
	if page == model.PageSettings {
		return TextNavSettings
	}
	return TextNavChat
}
