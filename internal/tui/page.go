package tui

import tea "github.com/charmbracelet/bubbletea"

// Page represents a top-level screen in the console.
type Page interface {
	ID() string
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	PageID string
	Params interface{}
}

// Enterable pages are told when they become the active page and receive the
// navigation params.
type Enterable interface {
	Enter(params interface{}) tea.Cmd
}

// Leavable pages are told when another page replaces them.
type Leavable interface {
	Leave()
}

// cmdQueue is implemented by pages whose controllers queue commands from
// outside Update, e.g. when the app emits a signal into the hub.
type cmdQueue interface {
	TakeCmds() tea.Cmd
}

// ReturnParams is passed when navigating back to a list from a form or a
// detail screen. Mutated tells the list its data may have changed.
type ReturnParams struct {
	Mutated bool
}

// Page identifiers.
const (
	PageOverview      = "overview"
	PageAnimals       = "animals"
	PageSuppliers     = "suppliers"
	PageCarcasses     = "carcasses"
	PageAnimalForm    = "animal-form"
	PageSupplierForm  = "supplier-form"
	PageSlaughterForm = "slaughter-form"
)

// addressed messages are delivered to the page they name, active or not.
type addressed interface {
	target() string
}
