package ecs

import "sync"

// World is the top-level entity container. It owns the entity pool, the list
// of attached bundle stores, and a command buffer that defers structural
// changes (despawn, attach, detach) requested while a query is running.
// Deferred commands are applied when the outermost query finishes and again
// at every phase boundary via Flush.
type World struct {
	mu       sync.Mutex
	pool     *entityPool
	stores   []bulkRemover
	depth    int
	commands []func(*World)
}

// bulkRemover is implemented by every Store so the world can clear an
// entity's data from all stores on despawn.
type bulkRemover interface {
	removeRaw(id EntityID)
}

func NewWorld() *World {
	return &World{
		pool:     newEntityPool(),
		commands: make([]func(*World), 0, 64),
	}
}

// Spawn reserves a fresh entity ID. The ID is usable immediately; the entity
// matches no query until bundles are attached, so reserving mid-query is safe.
func (w *World) Spawn() EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pool.spawn()
}

// Despawn removes all attached bundles and invalidates the ID. Requested
// during a query, the whole operation is deferred to the query boundary.
func (w *World) Despawn(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth > 0 {
		w.commands = append(w.commands, func(w *World) { w.despawnNow(id) })
		return
	}
	w.despawnNow(id)
}

func (w *World) despawnNow(id EntityID) {
	if !w.pool.alive(id) {
		return
	}
	for _, s := range w.stores {
		s.removeRaw(id)
	}
	w.pool.release(id)
}

// EachEntity visits every live entity, bundled or not. Structural changes
// requested by fn are deferred to the iteration boundary like any other
// query, so despawning the whole world from inside the callback is safe.
func (w *World) EachEntity(fn func(EntityID)) {
	w.beginIter()
	defer w.endIter()
	w.mu.Lock()
	ids := make([]EntityID, 0, len(w.pool.generations))
	w.pool.each(func(id EntityID) { ids = append(ids, id) })
	w.mu.Unlock()
	for _, id := range ids {
		fn(id)
	}
}

func (w *World) Alive(id EntityID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pool.alive(id)
}

// Flush applies all deferred structural commands. The scheduler calls it at
// every phase boundary; it is a no-op while a query is still running.
func (w *World) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

func (w *World) flushLocked() {
	if w.depth > 0 {
		return
	}
	for len(w.commands) > 0 {
		pending := w.commands
		w.commands = nil
		for _, cmd := range pending {
			cmd(w)
		}
	}
	w.commands = make([]func(*World), 0, 64)
}

func (w *World) register(s bulkRemover) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stores = append(w.stores, s)
}

func (w *World) beginIter() {
	w.mu.Lock()
	w.depth++
	w.mu.Unlock()
}

// endIter closes one nesting level; the command buffer drains only when the
// outermost query completes.
func (w *World) endIter() {
	w.mu.Lock()
	w.depth--
	if w.depth == 0 {
		w.flushLocked()
	}
	w.mu.Unlock()
}

func (w *World) deferCmd(cmd func(*World)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth == 0 {
		return false
	}
	w.commands = append(w.commands, cmd)
	return true
}
