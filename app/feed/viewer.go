package feed

// Viewer is the person a feed is rendered for. The zero value is an
// anonymous visitor.
type Viewer struct {
	UserID   int64
	Username string
}

func Anonymous() Viewer {
	return Viewer{}
}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}
