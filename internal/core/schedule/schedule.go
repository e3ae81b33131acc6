// Package schedule orders per-frame systems into named phases and executes
// them each tick. Phase order is declared up front with Chain and fixed by
// Build; within a phase, systems whose declared access signatures are
// disjoint run on parallel workers, while conflicting systems keep their
// registration order.
package schedule

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type phase struct {
	name    string
	systems []System
	waves   [][]System
}

// Schedule is built once at startup and then driven by Tick. All ordering
// errors (unknown phase, duplicate phase, cyclic chain) surface from Build
// before any frame executes.
type Schedule struct {
	log     *zap.Logger
	phases  map[string]*phase
	decl    []string            // phase declaration order, for deterministic topo sort
	after   map[string][]string // edge a→b: a runs before b
	linear  []*phase
	workers int
	built   bool
}

func New(log *zap.Logger, workers int) *Schedule {
	if workers < 1 {
		workers = 1
	}
	return &Schedule{
		log:     log,
		phases:  make(map[string]*phase),
		after:   make(map[string][]string),
		workers: workers,
	}
}

// AddPhase declares named phases. Declaring a phase twice is an error.
func (s *Schedule) AddPhase(names ...string) error {
	for _, name := range names {
		if _, ok := s.phases[name]; ok {
			return fmt.Errorf("schedule: phase %q already declared", name)
		}
		s.phases[name] = &phase{name: name}
		s.decl = append(s.decl, name)
	}
	return nil
}

// Chain declares that each named phase runs before the next. All phases must
// be declared already.
func (s *Schedule) Chain(names ...string) error {
	for _, name := range names {
		if _, ok := s.phases[name]; !ok {
			return fmt.Errorf("schedule: chain references unknown phase %q", name)
		}
	}
	for i := 0; i+1 < len(names); i++ {
		s.after[names[i]] = append(s.after[names[i]], names[i+1])
	}
	s.built = false
	return nil
}

// Register adds a system to a declared phase. Registration order is the tie
// break for conflicting systems inside the phase.
func (s *Schedule) Register(phaseName string, sys System) error {
	p, ok := s.phases[phaseName]
	if !ok {
		return fmt.Errorf("schedule: register %q to unknown phase %q", sys.Name(), phaseName)
	}
	p.systems = append(p.systems, sys)
	s.built = false
	return nil
}

// Build fixes the phase linearization and computes the parallel waves. A
// cycle in the declared chain is a configuration error; nothing runs until
// Build succeeds.
func (s *Schedule) Build() error {
	linear, err := s.sortPhases()
	if err != nil {
		return err
	}
	s.linear = linear
	for _, p := range s.linear {
		p.waves = buildWaves(p.systems)
		for i, wave := range p.waves {
			names := make([]string, len(wave))
			for j, sys := range wave {
				names[j] = sys.Name()
			}
			s.log.Debug("schedule wave",
				zap.String("phase", p.name),
				zap.Int("wave", i),
				zap.Strings("systems", names))
		}
	}
	s.built = true
	return nil
}

// sortPhases runs Kahn's algorithm, visiting ready phases in declaration
// order so the linearization is deterministic.
func (s *Schedule) sortPhases() ([]*phase, error) {
	indegree := make(map[string]int, len(s.phases))
	for name := range s.phases {
		indegree[name] = 0
	}
	for _, succs := range s.after {
		for _, b := range succs {
			indegree[b]++
		}
	}

	linear := make([]*phase, 0, len(s.phases))
	done := make(map[string]bool, len(s.phases))
	for len(linear) < len(s.phases) {
		picked := ""
		for _, name := range s.decl {
			if !done[name] && indegree[name] == 0 {
				picked = name
				break
			}
		}
		if picked == "" {
			remaining := make([]string, 0)
			for _, name := range s.decl {
				if !done[name] {
					remaining = append(remaining, name)
				}
			}
			return nil, fmt.Errorf("schedule: cyclic phase ordering among %v", remaining)
		}
		done[picked] = true
		linear = append(linear, s.phases[picked])
		for _, b := range s.after[picked] {
			indegree[b]--
		}
	}
	return linear, nil
}

// buildWaves greedily packs systems into waves: a system joins the current
// wave unless its access conflicts with a member, in which case a barrier
// starts a new wave. Conflicting systems therefore keep registration order
// across waves, which keeps frames reproducible.
func buildWaves(systems []System) [][]System {
	var waves [][]System
	var current []System
	for _, sys := range systems {
		conflict := false
		for _, member := range current {
			if sys.Access().ConflictsWith(member.Access()) {
				conflict = true
				break
			}
		}
		if conflict {
			waves = append(waves, current)
			current = nil
		}
		current = append(current, sys)
	}
	if len(current) > 0 {
		waves = append(waves, current)
	}
	return waves
}

// Tick runs one frame: every phase in the built order, wave by wave. The
// world's command buffer flushes at each phase boundary and the event bus
// rolls over at frame end. Build must have succeeded first.
func (s *Schedule) Tick(ctx *Context) {
	if !s.built {
		s.log.Error("schedule: tick before successful build")
		return
	}
	for _, p := range s.linear {
		for _, wave := range p.waves {
			s.runWave(wave, ctx)
		}
		if ctx.World != nil {
			ctx.World.Flush()
		}
	}
	if ctx.Events != nil {
		ctx.Events.EndFrame()
	}
}

func (s *Schedule) runWave(wave []System, ctx *Context) {
	if len(wave) == 1 || s.workers == 1 {
		for _, sys := range wave {
			sys.Update(ctx)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, sys := range wave {
		sys := sys
		g.Go(func() error {
			sys.Update(ctx)
			return nil
		})
	}
	// Systems never return errors; Wait is a pure barrier here.
	_ = g.Wait()
}

// Phases returns the built phase order by name, mostly for startup logging.
func (s *Schedule) Phases() []string {
	names := make([]string, len(s.linear))
	for i, p := range s.linear {
		names[i] = p.name
	}
	return names
}
