package game

import "github.com/worldkeeper/engine/internal/core/ecs"

// PlayerDied fires once when the player entity's health reaches zero. The ID
// is already despawn-pending when subscribers see it.
type PlayerDied struct {
	Entity ecs.EntityID
}

// EntityKilled fires for every non-player entity removed by damage. Name is
// the sprite name, which the score rules key on.
type EntityKilled struct {
	Entity ecs.EntityID
	Name   string
}

// FlowRequest asks the flow routine to dispatch an action. Undeclared
// transitions are dropped there, so publishers never need to check state.
type FlowRequest struct {
	Action Action
}

// FlowChanged fires after a declared transition was applied.
type FlowChanged struct {
	From, To State
}
