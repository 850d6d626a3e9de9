package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the console.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	Select key.Binding
	Back   key.Binding
	Quit   key.Binding

	Command key.Binding
	Help    key.Binding
	Refresh key.Binding

	// Dashboard selection
	NextDivision key.Binding
	PrevDivision key.Binding
	CycleDaily   key.Binding
	PickPeriod   key.Binding
	PrevPeriod   key.Binding
	NextPeriod   key.Binding
	CycleTopN    key.Binding

	// Screens
	Issues    key.Binding
	TagFilter key.Binding
	Survey    key.Binding
	Dashboard key.Binding
	Settings  key.Binding

	// Row actions
	New    key.Binding
	Edit   key.Binding
	Save   key.Binding
	Cancel key.Binding
	Delete key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextDivision: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next division"),
		),
		PrevDivision: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev division"),
		),
		CycleDaily: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "일간/주간/월간"),
		),
		PickPeriod: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pick period"),
		),
		PrevPeriod: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous period"),
		),
		NextPeriod: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next period"),
		),
		CycleTopN: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "top 3/5/10"),
		),
		Issues: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "issue reports"),
		),
		TagFilter: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tag filter"),
		),
		Survey: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "surveys"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "dashboard"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.NextDivision, k.CycleDaily, k.PickPeriod,
		k.Issues, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back, k.Quit},
		{k.NextDivision, k.PrevDivision, k.CycleDaily, k.PickPeriod, k.PrevPeriod, k.NextPeriod, k.CycleTopN},
		{k.Dashboard, k.Issues, k.TagFilter, k.Survey, k.Settings, k.Command, k.Help, k.Refresh},
		{k.New, k.Edit, k.Save, k.Cancel, k.Delete},
	}
}
