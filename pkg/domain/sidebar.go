package domain

// SidebarItem is one row in the conversation list, already sorted by
// recency. Exactly one item is Active when the list contains the current
// conversation.
type SidebarItem struct {
	ID     string
	Title  string
	Active bool
}
