package types

// TabRef is a single browser tab captured by the source extension.
type TabRef struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Pinned bool   `json:"pinned"`
}

// Group is a tab group with its tabs in display order.
type Group struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Color     string   `json:"color"`
	Collapsed bool     `json:"collapsed"`
	Tabs      []TabRef `json:"tabs"`
}

// Snapshot is the full state of the source browser's tab groups at one
// instant. It is treated as immutable once received.
type Snapshot struct {
	Groups        []Group  `json:"groups"`
	UngroupedTabs []TabRef `json:"ungroupedTabs"`
}

// GroupCount returns the number of groups in the snapshot.
func (s *Snapshot) GroupCount() int {
	if s == nil {
		return 0
	}
	return len(s.Groups)
}

// TabCount returns the number of tabs across all groups plus the ungrouped
// tabs. No filtering is applied.
func (s *Snapshot) TabCount() int {
	if s == nil {
		return 0
	}
	total := len(s.UngroupedTabs)
	for _, g := range s.Groups {
		total += len(g.Tabs)
	}
	return total
}
