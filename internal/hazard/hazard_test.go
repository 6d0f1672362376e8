package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/evacsim/internal/world"
)

func TestRing(t *testing.T) {
	pts := Ring(world.V(0, 0), 5, 8)
	require.Len(t, pts, 5)
	assert.InDelta(t, 8, pts[0].X, 1e-12)
	for _, p := range pts {
		assert.InDelta(t, 8, p.Len(), 1e-9)
	}
}

func TestFieldAddAndClear(t *testing.T) {
	fire := NewFire(1, 0)
	f := NewField(fire)
	h := f.Add(KindFire, world.V(2, 3))

	assert.Equal(t, DefaultFireRadius, h.Radius)
	assert.Equal(t, world.V(2, 3), h.Position)
	assert.True(t, f.Inside(world.V(3, 3)))
	assert.False(t, f.Inside(world.V(5, 3)), "boundary is outside")

	f.Clear()
	assert.Zero(t, f.Len())
	assert.Zero(t, fire.Len())
}

func TestFieldUpdateFlickersOnly(t *testing.T) {
	f := NewField(NewFire(7, 3))
	f.Add(KindFire, world.V(1, 1))
	before := f.List()[0]

	for i := 0; i < 50; i++ {
		f.Update(0.1)
		h := f.List()[0]
		assert.Equal(t, before.Position, h.Position)
		assert.Equal(t, before.Radius, h.Radius)
		assert.GreaterOrEqual(t, h.Intensity, 0.5)
		assert.LessOrEqual(t, h.Intensity, 1.0)
	}
}

func TestFieldStopsAnimating(t *testing.T) {
	f := NewField(NewFire(7, 3))
	f.Add(KindFire, world.V(1, 1))
	f.Update(0.3)
	f.SetAnimating(false)
	frozen := f.List()[0].Intensity
	f.Update(0.3)
	assert.Equal(t, frozen, f.List()[0].Intensity)
}

func TestListIsCopy(t *testing.T) {
	f := NewField(NewFire(1, 3))
	f.Add(KindFire, world.V(0, 0))
	l := f.List()
	l[0].Radius = 99
	assert.Equal(t, 3.0, f.List()[0].Radius)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "fire", KindFire.String())
	assert.Equal(t, "shooter", KindShooter.String())
}
