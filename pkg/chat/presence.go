package chat

import (
	"sync"

	"streamrelay/pkg/models"
)

// Presence maps live connection ids to participant metadata. The hub's run
// loop is the only writer; read access is open to HTTP handlers.
type Presence struct {
	mu           sync.RWMutex
	participants map[string]models.Participant
}

func NewPresence() *Presence {
	return &Presence{participants: make(map[string]models.Participant)}
}

// Put registers a participant. A duplicate join for the same connection id
// simply overwrites the previous entry.
func (p *Presence) Put(participant models.Participant) {
	p.mu.Lock()
	p.participants[participant.ConnID] = participant
	p.mu.Unlock()
}

func (p *Presence) Get(connID string) (models.Participant, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	participant, ok := p.participants[connID]
	return participant, ok
}

func (p *Presence) Remove(connID string) {
	p.mu.Lock()
	delete(p.participants, connID)
	p.mu.Unlock()
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.participants)
}
