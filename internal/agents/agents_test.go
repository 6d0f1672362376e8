package agents

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/evacsim/internal/world"
)

func newAgent() *Agent {
	a := NewSpawner(1).Spawn([]Profile{{Role: "Student", Speed: 7.5, PanicSensitivity: 0.7, Position: world.V(1, 2)}}, 1, world.Square(20))[0]
	a.SetAmbient(ModeDancing)
	a.Mode = ModeDancing
	return a
}

func TestSetModeRecordsHistory(t *testing.T) {
	a := newAgent()
	require.NoError(t, a.SetMode(ModeTakingCover, 0))
	require.NoError(t, a.SetMode(ModeFleeing, 5))
	require.NoError(t, a.SetMode(ModeEvacuated, 9))

	assert.Equal(t, []Mode{ModeDancing, ModeTakingCover, ModeFleeing, ModeEvacuated}, a.Modes())
	assert.Equal(t, 5.0, a.History[1].At)
}

func TestEvacuatedIsTerminal(t *testing.T) {
	a := newAgent()
	require.NoError(t, a.SetMode(ModeEvacuated, 1))

	for _, m := range []Mode{ModeIdle, ModeDancing, ModeTakingCover, ModeFleeing, ModeFrozen} {
		err := a.SetMode(m, 2)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, ModeEvacuated, a.Mode)
	}
	assert.NoError(t, a.SetMode(ModeEvacuated, 3))
	assert.Len(t, a.History, 1)
}

func TestPanicClamped(t *testing.T) {
	a := newAgent()
	a.SetPanic(1.7)
	assert.Equal(t, 1.0, a.Panic)
	a.AddPanic(-3)
	assert.Equal(t, 0.0, a.Panic)
	a.AddPanic(0.25)
	assert.InDelta(t, 0.25, a.Panic, 1e-12)
}

func TestAdvanceWaypointSingleStep(t *testing.T) {
	a := newAgent()
	a.SetGoal(world.V(10, 0), GoalExit, 0)
	a.SetPath([]world.Vec3{world.V(2, 0), world.V(5, 0)})
	require.Len(t, a.Path, 3, "goal appended")

	assert.False(t, a.AdvanceWaypoint())
	assert.Equal(t, 1, a.WaypointIndex)
	target, ok := a.CurrentTarget()
	require.True(t, ok)
	assert.Equal(t, world.V(5, 0), target)

	assert.False(t, a.AdvanceWaypoint())
	assert.True(t, a.AdvanceWaypoint())
	assert.True(t, a.AdvanceWaypoint())
	assert.Equal(t, len(a.Path), a.WaypointIndex)
}

func TestAdvanceWithoutPathReachesGoal(t *testing.T) {
	a := newAgent()
	a.SetGoal(world.V(3, 3), GoalSafeSpot, 1)
	assert.True(t, a.AdvanceWaypoint())
	assert.Equal(t, 0, a.WaypointIndex)
}

func TestSetGoalClearsPath(t *testing.T) {
	a := newAgent()
	a.SetGoal(world.V(3, 3), GoalSafeSpot, 1)
	a.SetPath([]world.Vec3{world.V(1, 1)})
	a.AdvanceWaypoint()
	a.SetGoal(world.V(8, 8), GoalExit, 2)
	assert.Nil(t, a.Path)
	assert.Equal(t, 0, a.WaypointIndex)
	assert.False(t, a.AtGoal)
	assert.Equal(t, GoalExit, a.GoalKind)
}

func TestResetRestores(t *testing.T) {
	a := newAgent()
	a.Position = world.V(9, 9)
	a.Yaw = 2
	a.SetPanic(0.9)
	a.SetGoal(world.V(0, 18), GoalExit, 1)
	require.NoError(t, a.SetMode(ModeEvacuated, 4))

	a.Reset()
	assert.Equal(t, a.Original, a.Position)
	assert.Equal(t, a.OriginalYaw, a.Yaw)
	assert.Equal(t, ModeDancing, a.Mode)
	assert.Zero(t, a.Panic)
	assert.Nil(t, a.Goal)
	assert.Empty(t, a.History)
}

func TestSpawnerCyclesProfilesDeterministically(t *testing.T) {
	profiles := DefaultProfiles()
	floor := world.Square(20)
	a := NewSpawner(42).Spawn(profiles, 20, floor)
	b := NewSpawner(42).Spawn(profiles, 20, floor)

	require.Len(t, a, 20)
	for i := range a {
		assert.Equal(t, AgentID(i+1), a[i].ID)
		assert.Equal(t, profiles[i%len(profiles)].Role, a[i].Profile.Role)
		assert.Equal(t, a[i].Position, b[i].Position)
		assert.True(t, floor.Contains(a[i].Position))
	}
	assert.Equal(t, profiles[0].Position, a[0].Position)
}

func TestSpawnerHeadless(t *testing.T) {
	s := NewSpawner(1)
	s.Assets = func(model string) bool { return model == "teacher" }
	all := s.Spawn(DefaultProfiles(), 4, world.Square(20))
	assert.False(t, all[0].Headless)
	assert.True(t, all[3].Headless)
}

func TestDefaultProfilesValid(t *testing.T) {
	for _, p := range DefaultProfiles() {
		assert.NoError(t, p.Validate(), p.Name)
	}
	assert.Error(t, Profile{Role: "x"}.Validate())
}

func TestBuildPairsSymmetric(t *testing.T) {
	all := NewSpawner(1).Spawn(DefaultProfiles(), 12, world.Square(20))
	ps := BuildPairs(all)
	require.Equal(t, 3, ps.Len())

	seen := map[AgentID]bool{}
	for _, p := range ps.List() {
		assert.True(t, p.Leader.Profile.LeadsDance)
		assert.False(t, p.Partner.Profile.LeadsDance)
		back, ok := ps.Partner(p.Partner.ID)
		require.True(t, ok)
		assert.Equal(t, p.Leader, back)
		assert.False(t, seen[p.Partner.ID], "partner used twice")
		seen[p.Partner.ID] = true
	}
	// Teacher A at (0,-10) is nearest Student 1 at (2,-7).
	assert.Equal(t, "Student 1", ps.List()[0].Partner.Name)
}

func TestDanceOrbitsAndFaces(t *testing.T) {
	all := NewSpawner(1).Spawn(DefaultProfiles(), 12, world.Square(20))
	for _, a := range all {
		a.SetAmbient(ModeDancing)
		a.Mode = ModeDancing
	}
	ps := BuildPairs(all)
	cfg := DefaultDanceConfig()

	for i := 1; i <= 10; i++ {
		Dance(all, ps, cfg, world.Square(20), float64(i)*0.1, 0.1)
	}
	p := ps.List()[0]
	dl := world.Distance(p.Leader.Position, p.Center)
	dp := world.Distance(p.Partner.Position, p.Center)
	assert.InDelta(t, 2*cfg.Radius, dl+dp, 1e-9)
	assert.InDelta(t, 0, math.Abs(world.AngleDiff(p.Leader.Yaw, p.Partner.Position.Sub(p.Leader.Position).Yaw())), 1e-9)

	solo := all[len(all)-1]
	_, paired := ps.Partner(solo.ID)
	require.False(t, paired)
	assert.InDelta(t, world.WrapAngle(solo.OriginalYaw+10*0.1*cfg.SoloSpin), solo.Yaw, 1e-9)
}

func TestDanceDisabledLeavesAgents(t *testing.T) {
	all := NewSpawner(1).Spawn(DefaultProfiles(), 12, world.Square(20))
	ps := BuildPairs(all)
	cfg := DefaultDanceConfig()
	cfg.Enabled = false
	assert.Equal(t, ModeIdle, cfg.AmbientMode())
	Dance(all, ps, cfg, world.Square(20), 1, 0.1)
	assert.Equal(t, all[0].Original, all[0].Position)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "taking_cover", ModeTakingCover.String())
	assert.Equal(t, "mode(42)", Mode(42).String())
}
