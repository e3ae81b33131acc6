package schedule

import (
	"time"

	"go.uber.org/zap"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
)

// Context carries the shared stores into every system update. The scheduler
// flushes the world's command buffer at each phase boundary and rolls the
// event bus over at the end of the frame.
type Context struct {
	World     *ecs.World
	Resources *resource.Store
	Events    *event.Bus
	Delta     time.Duration
	Log       *zap.Logger
}

// System is a unit of per-frame logic registered to one phase. Update must
// not block and must not fail: domain faults are surfaced as events or flow
// flags, never as panics or errors.
type System interface {
	Name() string
	Access() Access
	Update(ctx *Context)
}
