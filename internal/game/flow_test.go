package game

import "testing"

func TestFlowDispatch(t *testing.T) {
	t.Run("declared transitions walk the full cycle", func(t *testing.T) {
		f := NewFlow()
		steps := []struct {
			act  Action
			want State
		}{
			{ActionStart, StatePlaying},
			{ActionPause, StatePaused},
			{ActionResume, StatePlaying},
			{ActionDie, StateGameOver},
			{ActionRestart, StateMainMenu},
		}
		for _, step := range steps {
			got, ok := f.Dispatch(step.act)
			if !ok || got != step.want {
				t.Fatalf("dispatch %v: got %v ok=%v, want %v", step.act, got, ok, step.want)
			}
		}
	})

	t.Run("undeclared transitions are no-ops", func(t *testing.T) {
		f := NewFlow()
		for _, act := range []Action{ActionPause, ActionResume, ActionDie, ActionRestart} {
			if got, ok := f.Dispatch(act); ok || got != StateMainMenu {
				t.Fatalf("menu + %v: got %v ok=%v, want no-op", act, got, ok)
			}
		}

		f.Dispatch(ActionStart)
		f.Dispatch(ActionDie)
		// A queued pause landing after the death must not resurrect the run.
		if got, ok := f.Dispatch(ActionPause); ok || got != StateGameOver {
			t.Fatalf("game_over + pause: got %v ok=%v, want no-op", got, ok)
		}
	})

	t.Run("dispatch reports the unchanged state", func(t *testing.T) {
		f := NewFlow()
		if got, _ := f.Dispatch(ActionResume); got != f.Current() {
			t.Fatalf("no-op dispatch returned %v, state is %v", got, f.Current())
		}
	})
}
