package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	MessageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	DisabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Strikethrough(true)
)

// Card colours keyed by the colour name carried in hand messages
var cardStyles = map[string]lipgloss.Style{
	"Red":    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	"Yellow": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
	"Blue":   lipgloss.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true),
	"Green":  lipgloss.NewStyle().Foreground(lipgloss.Color("#55EFC4")).Bold(true),
	"Wild":   lipgloss.NewStyle().Foreground(lipgloss.Color("#A29BFE")).Bold(true),
}

// affordanceStyle maps a wire style name to a label style
func affordanceStyle(style string, disabled bool) lipgloss.Style {
	if disabled {
		return DisabledStyle
	}
	switch style {
	case "success":
		return SuccessStyle
	case "danger":
		return ErrorStyle
	case "primary":
		return ActionsStyle
	default:
		return InfoStyle
	}
}
