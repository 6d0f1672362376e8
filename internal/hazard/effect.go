package hazard

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/evacsim/internal/world"
)

// EffectPort creates and animates the visual side of a hazard. The
// simulation only needs its position and danger radius.
type EffectPort interface {
	Spawn(pos world.Vec3) Handle
	DangerRadius(h Handle) float64
	Position(h Handle) world.Vec3
	Intensity(h Handle) float64
	Update(h Handle, dt float64)
	Remove(h Handle)
}

// DefaultFireRadius is the danger radius of a fire.
const DefaultFireRadius = 3.0

type flame struct {
	pos       world.Vec3
	age       float64
	intensity float64
}

// Fire is the headless fire effect: a fixed danger circle whose intensity
// flickers with OpenSimplex noise.
type Fire struct {
	noise  opensimplex.Noise
	radius float64
	next   Handle
	flames map[Handle]*flame
}

// NewFire creates a fire effect with the given flicker seed and danger radius.
func NewFire(seed int64, radius float64) *Fire {
	if radius <= 0 {
		radius = DefaultFireRadius
	}
	return &Fire{
		noise:  opensimplex.New(seed + 700),
		radius: radius,
		next:   1,
		flames: make(map[Handle]*flame),
	}
}

func (f *Fire) Spawn(pos world.Vec3) Handle {
	h := f.next
	f.next++
	f.flames[h] = &flame{pos: pos, intensity: 1}
	return h
}

func (f *Fire) DangerRadius(h Handle) float64 {
	if _, ok := f.flames[h]; !ok {
		return 0
	}
	return f.radius
}

func (f *Fire) Position(h Handle) world.Vec3 {
	if fl, ok := f.flames[h]; ok {
		return fl.pos
	}
	return world.Vec3{}
}

func (f *Fire) Intensity(h Handle) float64 {
	if fl, ok := f.flames[h]; ok {
		return fl.intensity
	}
	return 0
}

// Update advances the flicker. Eval2 is in [-1, 1]; intensity stays in [0.5, 1].
func (f *Fire) Update(h Handle, dt float64) {
	fl, ok := f.flames[h]
	if !ok {
		return
	}
	fl.age += dt
	n := f.noise.Eval2(fl.age*3, float64(h)*7.13)
	fl.intensity = 0.75 + 0.25*n
}

func (f *Fire) Remove(h Handle) {
	delete(f.flames, h)
}

// Len returns the number of live flames.
func (f *Fire) Len() int {
	return len(f.flames)
}
