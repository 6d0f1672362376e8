package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/render"
	"github.com/talgya/evacsim/internal/world"
)

const dt = 1.0 / 30

func oneExitBuilding() *world.Building {
	b := &world.Building{
		Name:     "box",
		Floor:    world.Square(20),
		ExitList: []world.Exit{{Name: "North Exit", Position: world.V(0, -18)}},
	}
	b.MarkInitial()
	return b
}

func classroom(seed int64) *Director {
	pop := agents.NewSpawner(seed).Spawn(agents.DefaultProfiles(), 12, world.Square(20))
	return NewDirector(DefaultConfig(), world.DefaultBuilding(), pop, Deps{Seed: seed})
}

func runUntilComplete(t *testing.T, d *Director, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks && !d.IsComplete(); i++ {
		d.Tick(dt)
	}
	require.True(t, d.IsComplete(), "evacuated %d of %d", d.EvacuatedCount(), d.TotalCount())
}

func TestEvacuationCompletesThroughSingleExit(t *testing.T) {
	profiles := []agents.Profile{{Role: "Student", Speed: 7.5, PanicSensitivity: 0.7}}
	pop := agents.NewSpawner(3).Spawn(profiles, 10, world.Square(20))
	d := NewDirector(DefaultConfig(), oneExitBuilding(), pop, Deps{Seed: 3})

	require.NoError(t, d.StartEvacuation(ScenarioActiveShooter))
	runUntilComplete(t, d, 20000)

	assert.Equal(t, 10, d.EvacuatedCount())
	for _, a := range d.Agents() {
		assert.Equal(t, agents.ModeEvacuated, a.Mode)
	}
	sc, ok := d.Scenario()
	require.True(t, ok)
	assert.Equal(t, 10, sc.Evacuated)
	assert.NotEqual(t, uuid.Nil, sc.RunID)
}

func TestFireWithoutHazardsCompletes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scenarios[ScenarioFire] = ScenarioConfig{PanicBias: 0.7}
	profiles := []agents.Profile{{Role: "Student", Speed: 7.5, PanicSensitivity: 0.7}}
	pop := agents.NewSpawner(11).Spawn(profiles, 10, world.Square(20))
	d := NewDirector(cfg, oneExitBuilding(), pop, Deps{Seed: 11})

	require.NoError(t, d.StartEvacuation(ScenarioFire))
	assert.Empty(t, d.Hazards())
	runUntilComplete(t, d, 20000)
	assert.Equal(t, 10, d.EvacuatedCount())
}

func TestEarthquakeModeSequence(t *testing.T) {
	profiles := []agents.Profile{{Role: "Student", Speed: 7.5, PanicSensitivity: 0.7, Position: world.V(2, -7)}}
	pop := agents.NewSpawner(1).Spawn(profiles, 1, world.Square(20))
	d := NewDirector(DefaultConfig(), world.DefaultBuilding(), pop, Deps{Seed: 1})

	require.NoError(t, d.StartEvacuation(ScenarioEarthquake))
	a := d.Agents()[0]
	assert.Equal(t, agents.GoalSafeSpot, a.GoalKind)
	assert.Equal(t, 2.0, a.Speed)

	for i := 0; i < int(4/dt); i++ {
		d.Tick(dt)
	}
	assert.Equal(t, agents.ModeTakingCover, a.Mode, "stays under cover for the cover period")

	runUntilComplete(t, d, 20000)
	assert.Equal(t, []agents.Mode{
		agents.ModeDancing,
		agents.ModeTakingCover,
		agents.ModeFleeing,
		agents.ModeEvacuated,
	}, a.Modes())
	assert.GreaterOrEqual(t, a.History[1].At, DefaultEarthquake().CoverSeconds)
}

func TestFireSpawnsHazardRingAndPanics(t *testing.T) {
	d := classroom(5)
	require.NoError(t, d.StartEvacuation(ScenarioFire))

	hz := d.Hazards()
	require.Len(t, hz, 5)
	for _, h := range hz {
		assert.InDelta(t, 8, h.Position.Len(), 1e-9)
	}
	for _, a := range d.Agents() {
		assert.Equal(t, agents.ModeFleeing, a.Mode)
		assert.Equal(t, agents.GoalExit, a.GoalKind)
		base := agents.ClampPanic(0.7 * a.Profile.PanicFactor())
		if a.NearHazard {
			assert.InDelta(t, agents.ClampPanic(base+0.5), a.Panic, 1e-12)
		} else {
			assert.InDelta(t, base, a.Panic, 1e-12)
		}
	}
}

func TestStartWhileActive(t *testing.T) {
	d := classroom(1)
	require.NoError(t, d.StartEvacuation(ScenarioFire))
	assert.ErrorIs(t, d.StartEvacuation(ScenarioEarthquake), ErrScenarioActive)

	_, err := ParseScenario("flood")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestFireRunsAreDeterministic(t *testing.T) {
	a, b := classroom(11), classroom(11)
	for _, d := range []*Director{a, b} {
		for i := 0; i < 30; i++ {
			d.Tick(dt)
		}
		require.NoError(t, d.StartEvacuation(ScenarioFire))
		for i := 0; i < 300; i++ {
			d.Tick(dt)
		}
	}
	for i, x := range a.Agents() {
		y := b.Agents()[i]
		assert.Equal(t, x.Position, y.Position, x.Name)
		assert.Equal(t, x.Yaw, y.Yaw, x.Name)
		assert.Equal(t, x.Mode, y.Mode, x.Name)
	}
	assert.Equal(t, a.EvacuatedCount(), b.EvacuatedCount())
}

func TestAgentsStayInBounds(t *testing.T) {
	d := classroom(2)
	floor := d.Building().Floor
	require.NoError(t, d.StartEvacuation(ScenarioFire))
	for i := 0; i < 1500 && !d.IsComplete(); i++ {
		d.Tick(dt)
		for _, a := range d.Agents() {
			require.True(t, floor.Contains(a.Position), "%s left the floor at %v", a.Name, a.Position)
		}
	}
}

func TestEvacuatedAgentsStayPut(t *testing.T) {
	profiles := []agents.Profile{{Role: "Student", Speed: 7.5, PanicSensitivity: 0.7}}
	pop := agents.NewSpawner(4).Spawn(profiles, 10, world.Square(20))
	d := NewDirector(DefaultConfig(), oneExitBuilding(), pop, Deps{Seed: 4})
	require.NoError(t, d.StartEvacuation(ScenarioActiveShooter))
	runUntilComplete(t, d, 20000)

	before := make([]world.Vec3, 0, 10)
	for _, a := range d.Agents() {
		before = append(before, a.Position)
	}
	for i := 0; i < 60; i++ {
		d.Tick(dt)
	}
	for i, a := range d.Agents() {
		assert.Equal(t, before[i], a.Position)
		assert.Equal(t, agents.ModeEvacuated, a.Mode)
		assert.ErrorIs(t, a.SetMode(agents.ModeFleeing, 0), agents.ErrInvalidTransition)
	}
	assert.Equal(t, 10, d.EvacuatedCount())
	assert.Equal(t, StateComplete, d.State())
}

func TestResetIsFullRestore(t *testing.T) {
	used, fresh := classroom(8), classroom(8)

	for i := 0; i < 45; i++ {
		used.Tick(dt)
	}
	_, err := used.ToggleDoor(1)
	require.NoError(t, err)
	used.AddHazard(world.V(3, 3))
	require.NoError(t, used.StartEvacuation(ScenarioEarthquake))
	for i := 0; i < 200; i++ {
		used.Tick(dt)
	}
	used.Reset()

	assert.Equal(t, StateIdle, used.State())
	assert.Empty(t, used.Hazards())
	_, active := used.Scenario()
	assert.False(t, active)
	assert.Equal(t, fresh.Building().Doors, used.Building().Doors)
	assert.Equal(t, fresh.Props(), used.Props())

	for i, a := range used.Agents() {
		f := fresh.Agents()[i]
		assert.Equal(t, f.Position, a.Position)
		assert.Equal(t, f.Yaw, a.Yaw)
		assert.Equal(t, f.Mode, a.Mode)
		assert.Zero(t, a.Panic)
		assert.Nil(t, a.Goal)
		assert.Empty(t, a.History)
	}

	for i := 0; i < 30; i++ {
		used.Tick(dt)
		fresh.Tick(dt)
	}
	for i, a := range used.Agents() {
		assert.Equal(t, fresh.Agents()[i].Position, a.Position, a.Name)
	}
}

func TestAmbientDanceBeforeScenario(t *testing.T) {
	d := classroom(1)
	for _, a := range d.Agents() {
		assert.Equal(t, agents.ModeDancing, a.Mode)
	}
	require.Equal(t, 3, d.Pairs().Len())
	leader := d.Pairs().List()[0].Leader
	start := leader.Position
	for i := 0; i < 30; i++ {
		d.Tick(dt)
	}
	assert.NotEqual(t, start, leader.Position)
	assert.Zero(t, d.Elapsed())
}

func TestDanceDisabledStartsIdle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dance.Enabled = false
	pop := agents.NewSpawner(1).Spawn(agents.DefaultProfiles(), 12, world.Square(20))
	d := NewDirector(cfg, world.DefaultBuilding(), pop, Deps{})
	d.Tick(dt)
	for _, a := range d.Agents() {
		assert.Equal(t, agents.ModeIdle, a.Mode)
		assert.Equal(t, a.Original, a.Position)
	}
}

func TestAddHazardAnyState(t *testing.T) {
	d := classroom(1)
	h := d.AddHazard(world.V(50, 0))
	assert.Equal(t, 20.0, h.Position.X, "clamped to floor")
	require.Len(t, d.Hazards(), 1)

	require.NoError(t, d.StartEvacuation(ScenarioActiveShooter))
	d.AddHazard(world.V(0, 0))
	assert.Len(t, d.Hazards(), 2)

	d.Reset()
	assert.Empty(t, d.Hazards())
}

func TestToggleDoorOutOfRange(t *testing.T) {
	d := classroom(1)
	_, err := d.ToggleDoor(99)
	assert.ErrorIs(t, err, world.ErrNoDoor)
	open, err := d.ToggleDoor(0)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestEarthquakeShakesProps(t *testing.T) {
	d := classroom(6)
	baseline := d.Props()
	require.NoError(t, d.StartEvacuation(ScenarioEarthquake))
	for i := 0; i < 10; i++ {
		d.Tick(dt)
	}
	assert.NotEqual(t, baseline, d.Props())
	d.Reset()
	assert.Equal(t, baseline, d.Props())
}

func TestHeadlessAgentsNotSynced(t *testing.T) {
	rec := render.NewRecorder(4)
	s := agents.NewSpawner(1)
	s.Assets = func(model string) bool { return model == "teacher" }
	pop := s.Spawn(agents.DefaultProfiles(), 12, world.Square(20))
	d := NewDirector(DefaultConfig(), world.DefaultBuilding(), pop, Deps{Sink: render.NewBuilder(rec.Record)})

	d.Tick(dt)
	f, ok := rec.Last()
	require.True(t, ok)
	assert.Len(t, f.Agents, 3)
	assert.Len(t, f.Props, len(d.Building().Props()))
	assert.Equal(t, uint64(1), f.Tick)
}

func TestEventsBounded(t *testing.T) {
	d := classroom(1)
	for i := 0; i < maxEvents+50; i++ {
		d.AddHazard(world.V(0, 0))
	}
	ev := d.Events()
	assert.Len(t, ev, maxEvents)
	assert.Equal(t, CategoryHazard, ev[0].Category)
}

func TestNearestExitTieGoesToFirst(t *testing.T) {
	b := &world.Building{
		Floor: world.Square(20),
		ExitList: []world.Exit{
			{Name: "a", Position: world.V(-5, 0)},
			{Name: "b", Position: world.V(5, 0)},
		},
	}
	assert.Equal(t, 0, NearestExit(b, world.V(0, 3)))
	assert.Equal(t, 1, NearestExit(b, world.V(1, 0)))
	assert.Equal(t, -1, NearestExit(&world.Building{}, world.V(0, 0)))
	assert.Equal(t, 2, NearestSafeSpot(world.DefaultBuilding(), world.V(-5, 5)))
}
