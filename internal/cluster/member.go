// Package cluster implements loose membership gossip: a list of peer
// descriptors and a UDP bus used to announce and discover nodes. There is
// no replication, no key routing and no quorum (see SPEC_FULL.md §4.6 and
// its Non-goals).
package cluster

import "sync"

// Member is one cluster node descriptor.
type Member struct {
	Host string
	Port string
	Self bool
}

func (m Member) addr() string { return m.Host + ":" + m.Port }

// List is the deduplicated set of known members, guarded by its own
// mutex rather than the store lock: members are added by the bus and the
// JOIN handler, neither of which touches trie or expiration state.
type List struct {
	mu      sync.Mutex
	members []Member
}

// NewList returns a list containing just self.
func NewList(self Member) *List {
	self.Self = true
	return &List{members: []Member{self}}
}

// Add inserts m if no member with the same host:port is already known.
// Reports whether it was newly added.
func (l *List) Add(m Member) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.members {
		if existing.addr() == m.addr() {
			return false
		}
	}
	l.members = append(l.members, m)
	return true
}

// Snapshot returns a copy of the current member list.
func (l *List) Snapshot() []Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Member, len(l.members))
	copy(out, l.members)
	return out
}

// Len reports the number of known members.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members)
}
