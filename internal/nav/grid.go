package nav

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/talgya/evacsim/internal/world"
)

type node struct{ x, z int }

// Neighbor offsets in fixed order so equal-cost searches are deterministic.
var steps = [8]struct {
	dx, dz int
	cost   float64
}{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

type occupancy struct {
	floor  world.Bounds
	cell   float64
	nx, nz int
	solid  []bool
}

func (o *occupancy) toNode(p world.Vec3) node {
	x := int(math.Floor((p.X - o.floor.MinX) / o.cell))
	z := int(math.Floor((p.Z - o.floor.MinZ) / o.cell))
	return node{min(max(x, 0), o.nx-1), min(max(z, 0), o.nz-1)}
}

func (o *occupancy) center(n node) world.Vec3 {
	return world.V(o.floor.MinX+(float64(n.x)+0.5)*o.cell, o.floor.MinZ+(float64(n.z)+0.5)*o.cell)
}

func (o *occupancy) blocked(n node) bool {
	if n.x < 0 || n.z < 0 || n.x >= o.nx || n.z >= o.nz {
		return true
	}
	return o.solid[n.z*o.nx+n.x]
}

// clear walks the segment a→b in quarter-cell samples.
func (o *occupancy) clear(a, b world.Vec3) bool {
	d := world.Distance(a, b)
	n := int(math.Ceil(d/(o.cell/4))) + 1
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p := a.Add(b.Sub(a).Scale(t))
		if o.blocked(o.toNode(p)) {
			return false
		}
	}
	return true
}

// Grid is an A* pathfinder over a uniform occupancy grid rasterized from
// building walls. One grid is kept per zone.
type Grid struct {
	cell  float64
	zones map[string]*occupancy
}

// NewGrid creates an empty grid pathfinder with the given cell size.
func NewGrid(cell float64) *Grid {
	if cell <= 0 {
		cell = 0.5
	}
	return &Grid{cell: cell, zones: make(map[string]*occupancy)}
}

// AddBuilding rasterizes b's walls under the zone b.Name.
func (g *Grid) AddBuilding(b *world.Building) {
	o := &occupancy{
		floor: b.Floor,
		cell:  g.cell,
		nx:    max(1, int(math.Ceil((b.Floor.MaxX-b.Floor.MinX)/g.cell))),
		nz:    max(1, int(math.Ceil((b.Floor.MaxZ-b.Floor.MinZ)/g.cell))),
	}
	o.solid = make([]bool, o.nx*o.nz)
	for z := 0; z < o.nz; z++ {
		for x := 0; x < o.nx; x++ {
			x0 := b.Floor.MinX + float64(x)*g.cell
			z0 := b.Floor.MinZ + float64(z)*g.cell
			for _, w := range b.Walls {
				// Cells touching a wall count as solid, so paths keep clear of its edges.
				if x0 <= w.MaxX && x0+g.cell >= w.MinX && z0 <= w.MaxZ && z0+g.cell >= w.MinZ {
					o.solid[z*o.nx+x] = true
					break
				}
			}
		}
	}
	g.zones[b.Name] = o
}

func (g *Grid) FindPath(zone string, start, goal world.Vec3) ([]world.Vec3, error) {
	o, ok := g.zones[zone]
	if !ok {
		return nil, fmt.Errorf("zone %q: %w", zone, ErrUnknownZone)
	}
	from, to := o.toNode(start), o.toNode(goal)
	if o.blocked(to) {
		return nil, fmt.Errorf("goal %v is inside an obstacle: %w", goal, ErrPathNotFound)
	}
	if o.clear(start, goal) {
		return []world.Vec3{goal}, nil
	}

	cells, ok := o.search(from, to)
	if !ok {
		return nil, fmt.Errorf("%v to %v: %w", start, goal, ErrPathNotFound)
	}

	pts := make([]world.Vec3, 0, len(cells)+1)
	for _, c := range cells[1:] {
		pts = append(pts, o.center(c))
	}
	if len(pts) > 0 {
		pts = pts[:len(pts)-1]
	}
	pts = append(pts, goal)
	return o.simplify(start, pts), nil
}

// simplify drops waypoints that can be skipped in a straight line.
func (o *occupancy) simplify(start world.Vec3, pts []world.Vec3) []world.Vec3 {
	out := make([]world.Vec3, 0, len(pts))
	from := start
	for i := 0; i < len(pts); {
		j := len(pts) - 1
		for j > i && !o.clear(from, pts[j]) {
			j--
		}
		out = append(out, pts[j])
		from = pts[j]
		i = j + 1
	}
	return out
}

func (o *occupancy) search(from, to node) ([]node, bool) {
	h := func(n node) float64 {
		dx, dz := math.Abs(float64(n.x-to.x)), math.Abs(float64(n.z-to.z))
		return (dx + dz) + (math.Sqrt2-2)*math.Min(dx, dz)
	}
	open := &frontier{}
	cost := map[node]float64{from: 0}
	came := map[node]node{}
	seq := 0
	heap.Push(open, &entry{n: from, f: h(from)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*entry)
		if cur.n == to {
			path := []node{to}
			for n := to; n != from; {
				n = came[n]
				path = append(path, n)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}
		if cur.g > cost[cur.n] {
			continue
		}
		for _, s := range steps {
			next := node{cur.n.x + s.dx, cur.n.z + s.dz}
			if o.blocked(next) {
				continue
			}
			// No corner cutting.
			if s.dx != 0 && s.dz != 0 && (o.blocked(node{cur.n.x + s.dx, cur.n.z}) || o.blocked(node{cur.n.x, cur.n.z + s.dz})) {
				continue
			}
			g := cost[cur.n] + s.cost
			if old, seen := cost[next]; seen && g >= old {
				continue
			}
			cost[next] = g
			came[next] = cur.n
			seq++
			heap.Push(open, &entry{n: next, g: g, f: g + h(next), seq: seq})
		}
	}
	return nil, false
}

type entry struct {
	n   node
	g   float64
	f   float64
	seq int
}

type frontier []*entry

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].f != f[j].f {
		return f[i].f < f[j].f
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(*entry)) }
func (f *frontier) Pop() any {
	old := *f
	e := old[len(old)-1]
	*f = old[:len(old)-1]
	return e
}
