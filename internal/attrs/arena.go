package attrs

// Arena is the Go analogue of the talloc chain spec.md §9 describes: a single
// owning container for one conversation's session-state attributes and
// persisted request data. Ownership moves wholesale between a Request and a
// StateEntry by calling Take, which empties the source — the moral
// equivalent of reparenting a talloc chunk rather than deep-copying it (I4).
//
// Arena is not safe for concurrent use; callers hold it under whatever lock
// guards its current owner (the StateStore mutex while linked into an entry,
// nothing while held exclusively by a Request per I6).
type Arena struct {
	VPs  List
	Data map[string]any
}

// Empty reports whether the arena carries neither session-state attributes
// nor persisted data, i.e. nothing worth allocating a StateEntry for
// (spec.md §4.1 "from_request").
func (a *Arena) Empty() bool {
	return a == nil || (len(a.VPs) == 0 && len(a.Data) == 0)
}

// Take moves the contents of a into a new Arena and zeroes a in place,
// enforcing I6 (at most one owner at any time) by construction: after Take
// returns, a no longer references anything the returned Arena does.
func (a *Arena) Take() *Arena {
	if a == nil {
		return nil
	}
	moved := &Arena{VPs: a.VPs, Data: a.Data}
	a.VPs = nil
	a.Data = nil
	return moved
}
