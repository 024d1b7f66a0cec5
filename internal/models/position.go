package models

// Break and Training are reporting rows on the final grid, never assignable
// positions.
const (
	RowBreak    = "Break"
	RowTraining = "Training"
)

// PositionLobby is only staffed when the lobby is open; it is appended to
// the catalog behind a configuration toggle.
const PositionLobby = "Lobby"

// defaultWorkPositions is the assignable position catalog in presentation
// order.
var defaultWorkPositions = []string{
	"Handout",
	"Line Buster 1",
	"Conductor",
	"Line Buster 2",
	"Expo",
	"Drink Maker 1",
	"Drink Maker 2",
	"Line Buster 3",
}

// Catalog is the ordered set of assignable work positions for a run. The
// order fixes both the solver's position enumeration order and the row
// order of the final grid.
type Catalog struct {
	Work []string
}

// NewCatalog builds the default catalog, optionally including the Lobby
// position.
func NewCatalog(includeLobby bool) Catalog {
	work := make([]string, len(defaultWorkPositions), len(defaultWorkPositions)+1)
	copy(work, defaultWorkPositions)
	if includeLobby {
		work = append(work, PositionLobby)
	}
	return Catalog{Work: work}
}

// Contains reports whether pos is an assignable position in this catalog.
func (c Catalog) Contains(pos string) bool {
	for _, p := range c.Work {
		if p == pos {
			return true
		}
	}
	return false
}

// RowOrder returns the full presentation row order: every work position,
// then Break and Training pinned as the last two rows.
func (c Catalog) RowOrder() []string {
	rows := make([]string, 0, len(c.Work)+2)
	rows = append(rows, c.Work...)
	return append(rows, RowBreak, RowTraining)
}
