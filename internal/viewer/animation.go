package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
)

// Mixer plays every clip of one asset on a shared clock. Each clip loops
// independently at its own duration; the pose is sampled fresh per frame so
// a mixer holds no per-frame state beyond the clock.
type Mixer struct {
	asset *model.Asset
	time  float32

	// scratch, sized once
	local []nodePose
	world []mgl32.Mat4
}

type nodePose struct {
	t mgl32.Vec3
	r mgl32.Quat
	s mgl32.Vec3
}

// NewMixer creates a mixer over the asset's clips.
func NewMixer(a *model.Asset) *Mixer {
	return &Mixer{
		asset: a,
		local: make([]nodePose, len(a.Nodes)),
		world: make([]mgl32.Mat4, len(a.Nodes)),
	}
}

// Advance moves the mixer clock forward by dt seconds.
func (m *Mixer) Advance(dt float32) {
	m.time += dt
}

// Time returns the mixer clock in seconds since the mixer was created.
func (m *Mixer) Time() float32 {
	return m.time
}

// Pose returns per-node world matrices at the current clock, with pre
// applied above every root. The slice is reused across calls.
func (m *Mixer) Pose(pre mgl32.Mat4) []mgl32.Mat4 {
	for i, n := range m.asset.Nodes {
		m.local[i] = nodePose{t: n.Translation, r: n.Rotation, s: n.Scale}
	}
	for _, clip := range m.asset.Clips {
		t := loopTime(m.time, clip.Duration)
		for _, ch := range clip.Channels {
			if len(ch.Times) == 0 || ch.Node < 0 || ch.Node >= len(m.local) {
				continue
			}
			switch ch.Path {
			case model.PathTranslation:
				m.local[ch.Node].t = sampleVec3(ch.Times, ch.Vecs, t, ch.Step)
			case model.PathRotation:
				m.local[ch.Node].r = sampleQuat(ch.Times, ch.Quats, t, ch.Step)
			case model.PathScale:
				m.local[ch.Node].s = sampleVec3(ch.Times, ch.Vecs, t, ch.Step)
			}
		}
	}

	var walk func(idx int, parent mgl32.Mat4)
	walk = func(idx int, parent mgl32.Mat4) {
		n := m.asset.Nodes[idx]
		var lm mgl32.Mat4
		if n.HasMatrix {
			// Matrix nodes are never animation targets.
			lm = n.Matrix
		} else {
			p := m.local[idx]
			lm = mgl32.Translate3D(p.t.X(), p.t.Y(), p.t.Z()).
				Mul4(p.r.Mat4()).
				Mul4(mgl32.Scale3D(p.s.X(), p.s.Y(), p.s.Z()))
		}
		w := parent.Mul4(lm)
		m.world[idx] = w
		for _, c := range n.Children {
			walk(c, w)
		}
	}
	for _, r := range m.asset.Roots {
		walk(r, pre)
	}
	return m.world
}

// loopTime wraps t into [0, duration).
func loopTime(t, duration float32) float32 {
	if duration <= 0 {
		return 0
	}
	lt := float32(math.Mod(float64(t), float64(duration)))
	if lt < 0 {
		lt += duration
	}
	return lt
}

// bracket finds the keyframe pair around t and the interpolation fraction.
// Times outside the track clamp to the nearest key with a zero fraction.
func bracket(times []float32, t float32) (int, float32) {
	last := len(times) - 1
	if last <= 0 || t <= times[0] {
		return 0, 0
	}
	if t >= times[last] {
		return last, 0
	}
	for i := 0; i < last; i++ {
		if times[i] <= t && t < times[i+1] {
			span := times[i+1] - times[i]
			if span <= 0 {
				return i, 0
			}
			return i, (t - times[i]) / span
		}
	}
	return last, 0
}

func sampleVec3(times []float32, vals [][3]float32, t float32, step bool) mgl32.Vec3 {
	i, frac := bracket(times, t)
	if i >= len(vals) {
		i = len(vals) - 1
	}
	a := vals[i]
	if step || frac == 0 || i+1 >= len(vals) {
		return mgl32.Vec3{a[0], a[1], a[2]}
	}
	b := vals[i+1]
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*frac,
		a[1] + (b[1]-a[1])*frac,
		a[2] + (b[2]-a[2])*frac,
	}
}

func sampleQuat(times []float32, vals [][4]float32, t float32, step bool) mgl32.Quat {
	i, frac := bracket(times, t)
	if i >= len(vals) {
		i = len(vals) - 1
	}
	a := quatOf(vals[i])
	if step || frac == 0 || i+1 >= len(vals) {
		return a.Normalize()
	}
	b := quatOf(vals[i+1])
	// Slerp along the shorter arc.
	if a.Dot(b) < 0 {
		b = mgl32.Quat{W: -b.W, V: b.V.Mul(-1)}
	}
	return mgl32.QuatSlerp(a.Normalize(), b.Normalize(), frac)
}

// quatOf converts stored (x, y, z, w) order.
func quatOf(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
