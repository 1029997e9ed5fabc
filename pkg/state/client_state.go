package state

import (
	"sync"

	"github.com/sessamekesh/blockbridge/pkg/coords"
)

// ClientState is the last value the server reported for each query. Nothing is
// cleared on disconnect: readers keep seeing the most recent values.
type ClientState struct {
	PlayerPosition  coords.Position
	LastBlockInfo   string
	InvitationCount int
	CurrentWorld    string
}

type ClientStateCache struct {
	mut_state sync.RWMutex
	state     ClientState
}

// ClientStateWriter is the only way to mutate a cache. The bridge hands it to
// the response router and nobody else.
type ClientStateWriter struct {
	cache *ClientStateCache
}

func CreateClientStateCache() (*ClientStateCache, *ClientStateWriter) {
	cache := &ClientStateCache{
		mut_state: sync.RWMutex{},
		state:     ClientState{},
	}
	return cache, &ClientStateWriter{cache: cache}
}

func (c *ClientStateCache) Snapshot() ClientState {
	c.mut_state.RLock()
	defer c.mut_state.RUnlock()
	return c.state
}

func (c *ClientStateCache) PlayerPosition() coords.Position {
	c.mut_state.RLock()
	defer c.mut_state.RUnlock()
	return c.state.PlayerPosition
}

func (c *ClientStateCache) LastBlockInfo() string {
	c.mut_state.RLock()
	defer c.mut_state.RUnlock()
	return c.state.LastBlockInfo
}

func (c *ClientStateCache) InvitationCount() int {
	c.mut_state.RLock()
	defer c.mut_state.RUnlock()
	return c.state.InvitationCount
}

func (c *ClientStateCache) CurrentWorld() string {
	c.mut_state.RLock()
	defer c.mut_state.RUnlock()
	return c.state.CurrentWorld
}

func (w *ClientStateWriter) SetPlayerPosition(pos coords.Position) {
	w.cache.mut_state.Lock()
	defer w.cache.mut_state.Unlock()
	w.cache.state.PlayerPosition = pos
}

func (w *ClientStateWriter) SetLastBlockInfo(info string) {
	w.cache.mut_state.Lock()
	defer w.cache.mut_state.Unlock()
	w.cache.state.LastBlockInfo = info
}

func (w *ClientStateWriter) SetInvitationCount(count int) {
	w.cache.mut_state.Lock()
	defer w.cache.mut_state.Unlock()
	w.cache.state.InvitationCount = count
}

func (w *ClientStateWriter) SetCurrentWorld(world string) {
	w.cache.mut_state.Lock()
	defer w.cache.mut_state.Unlock()
	w.cache.state.CurrentWorld = world
}
