package registry

// MemStore is an in-memory Store. It backs the "memory" registry backend and
// doubles as a test seam: SaveErr, when set, makes every Save fail with that
// error without touching the held snapshot.
type MemStore struct {
	Snap    Snapshot
	SaveErr error

	saves int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{Snap: make(Snapshot)}
}

// Load hands back a deep copy so the registry never aliases the stored maps.
func (m *MemStore) Load() (Snapshot, error) {
	return m.Snap.clone(), nil
}

// Save replaces the held snapshot with a deep copy of the argument.
func (m *MemStore) Save(snap Snapshot) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Snap = snap.clone()
	m.saves++
	return nil
}

// Saves reports how many successful Save calls have happened.
func (m *MemStore) Saves() int {
	return m.saves
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	for category, values := range s {
		inner := make(map[string]string, len(values))
		for v, id := range values {
			inner[v] = id
		}
		out[category] = inner
	}
	return out
}
