package viewctl

// MenuCoordinator is the single open-menu slot shared by every row of one
// list. A row's menu is open iff IsOpen(row key) is true; rows hold no open
// state of their own, so two menus can never be open at once.
type MenuCoordinator[K comparable] struct {
	open   K
	isOpen bool
}

// NewMenuCoordinator returns a coordinator with every menu closed.
func NewMenuCoordinator[K comparable]() *MenuCoordinator[K] {
	return &MenuCoordinator[K]{}
}

// Toggle closes id's menu if it is open, otherwise opens it (closing any
// other open menu).
func (m *MenuCoordinator[K]) Toggle(id K) {
	if m.isOpen && m.open == id {
		m.Close()
		return
	}
	m.open = id
	m.isOpen = true
}

// Close closes whichever menu is open.
func (m *MenuCoordinator[K]) Close() {
	var zero K
	m.open = zero
	m.isOpen = false
}

// IsOpen reports whether id's menu is the open one.
func (m *MenuCoordinator[K]) IsOpen(id K) bool {
	return m.isOpen && m.open == id
}

// OpenID returns the key of the open menu, if any.
func (m *MenuCoordinator[K]) OpenID() (K, bool) {
	return m.open, m.isOpen
}

// Retain closes the open menu when its row is not among keys. It reports
// whether the menu was closed.
func (m *MenuCoordinator[K]) Retain(keys []K) bool {
	if !m.isOpen {
		return false
	}
	for _, k := range keys {
		if k == m.open {
			return false
		}
	}
	m.Close()
	return true
}
