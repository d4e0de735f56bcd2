package game

// Player is a participant identity supplied by the chat transport. Identity
// is the ID; Name is only used for display.
type Player struct {
	ID   string
	Name string
}

// NewPlayer creates a player identity
func NewPlayer(id, name string) Player {
	return Player{ID: id, Name: name}
}

// Is reports whether both values refer to the same participant
func (p Player) Is(other Player) bool {
	return p.ID == other.ID
}

// String returns the roster label for the player
func (p Player) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
