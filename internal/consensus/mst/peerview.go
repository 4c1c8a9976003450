package mst

// PeerView is a mapping peer_pubkey_hex -> State representing "what we
// believe this peer last knew" (spec.md §3.3). It is guarded by the
// Processor's mutex; it never acquires its own lock.
type PeerView struct {
	completer Completer
	states    map[string]*State
}

// NewPeerView builds an empty peer view table bound to the given
// completer, used to construct a fresh *State for peers seen for the
// first time.
func NewPeerView(completer Completer) *PeerView {
	return &PeerView{completer: completer, states: make(map[string]*State)}
}

// Get returns the state for a peer, creating an empty one on first
// access so callers never need a nil check.
func (v *PeerView) Get(peer string) *State {
	s, ok := v.states[peer]
	if !ok {
		s = New(v.completer)
		v.states[peer] = s
	}
	return s
}

// MergeInto unions diff into the view held for peer, recording that the
// peer now has what was sent or received.
func (v *PeerView) MergeInto(peer string, diff *State) {
	v.Get(peer).UnionAssign(diff)
}

// Peers returns the set of peer keys known to the table.
func (v *PeerView) Peers() []string {
	out := make([]string, 0, len(v.states))
	for p := range v.states {
		out = append(out, p)
	}
	return out
}
