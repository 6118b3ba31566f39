// Package viewer implements the engine-agnostic core of the showroom: it
// loads a set of assets, derives the shared normalization frame from the
// base asset, keeps animations running, and swaps key-toggled parts.
//
// A session is single-goroutine by contract: loader goroutines only fetch
// and decode, posting results to a channel that Tick drains, so every scene
// mutation happens on the goroutine that calls Tick.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
)

// LoadFunc fetches and decodes one asset. Implementations must honor ctx
// cancellation; the session cancels superseded loads.
type LoadFunc func(ctx context.Context, path string) (*model.Asset, error)

// SlotOptions binds a key name to its two part variants.
type SlotOptions struct {
	Key string
	Off string
	On  string
}

// Options configures a session.
type Options struct {
	// ModelPaths lists the static parts. The first entry is the base asset
	// that defines the normalization frame and must load before the rest.
	ModelPaths []string

	// Slots are the key-toggled parts. Their variants load only after
	// every static part is resident.
	Slots []SlotOptions

	// Rotation is the model rotation in radians per axis, applied to every
	// part beneath the frame.
	Rotation mgl32.Vec3

	// AutoRotate spins the whole scene about the world Y axis at
	// RotateSpeed radians per second.
	AutoRotate  bool
	RotateSpeed float32

	CastShadow    bool
	ReceiveShadow bool
}

type result struct {
	dest  string
	gen   uint64
	slot  string
	path  string
	asset *model.Asset
	err   error
}

// Session owns the scene. Not safe for concurrent use: Start, Tick, KeyDown,
// KeyUp, Reload, and the accessors all belong on one goroutine.
type Session struct {
	opts Options
	load LoadFunc

	rotation mgl32.Mat4
	frame    *Frame
	root     mgl32.Mat4

	scene     *Scene
	slots     map[string]*Slot
	slotOrder []string
	static    map[string]string // dest -> resident instance id

	yaw float32

	ctx     context.Context
	cancel  context.CancelFunc
	results chan result
	gens    map[string]uint64
	cancels map[string]context.CancelFunc

	started  bool
	ready    bool
	loaded   int
	total    int
	progress int
	baseErr  error
	loadErr  error
}

// NewSession validates opts and builds an idle session. Start kicks off the
// base load.
func NewSession(opts Options, load LoadFunc) (*Session, error) {
	if len(opts.ModelPaths) == 0 {
		return nil, fmt.Errorf("viewer: no model paths configured")
	}
	if load == nil {
		return nil, fmt.Errorf("viewer: nil load function")
	}

	s := &Session{
		opts:     opts,
		load:     load,
		rotation: EulerRotation(opts.Rotation),
		scene:    NewScene(),
		slots:    make(map[string]*Slot, len(opts.Slots)),
		static:   make(map[string]string),
		results:  make(chan result, 16),
		gens:     make(map[string]uint64),
		cancels:  make(map[string]context.CancelFunc),
		total:    len(opts.ModelPaths),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	for _, so := range opts.Slots {
		if so.Key == "" || so.Off == "" || so.On == "" {
			return nil, fmt.Errorf("viewer: slot %q needs a key and both variants", so.Key)
		}
		if _, dup := s.slots[so.Key]; dup {
			return nil, fmt.Errorf("viewer: duplicate slot key %q", so.Key)
		}
		s.slots[so.Key] = &Slot{Key: so.Key, Off: so.Off, On: so.On}
		s.slotOrder = append(s.slotOrder, so.Key)
	}
	return s, nil
}

// Start begins loading: the base asset first, the remaining parts once the
// base is resident and the frame exists.
func (s *Session) Start() {
	if s.started {
		return
	}
	s.started = true
	slog.Info("loading models", "count", s.total, "base", s.opts.ModelPaths[0])
	s.startLoad(staticDest(0), "", s.opts.ModelPaths[0])
}

// Close cancels every in-flight load.
func (s *Session) Close() {
	s.cancel()
}

// Tick drains finished loads, advances animation clocks, and spins the
// scene. dt is the frame delta in seconds.
func (s *Session) Tick(dt float32) {
drain:
	for {
		select {
		case r := <-s.results:
			s.apply(r)
		default:
			break drain
		}
	}
	for _, inst := range s.scene.Instances() {
		if inst.Mixer != nil {
			inst.Mixer.Advance(dt)
		}
	}
	if s.opts.AutoRotate {
		s.yaw += s.opts.RotateSpeed * dt
		const twoPi = 2 * math.Pi
		for s.yaw >= twoPi {
			s.yaw -= twoPi
		}
		for s.yaw < 0 {
			s.yaw += twoPi
		}
	}
}

// KeyDown switches the slot bound to key to its on variant. Repeats while
// held are ignored, as are presses before the static parts finish.
func (s *Session) KeyDown(key string) {
	sl := s.slots[key]
	if sl == nil || !s.ready {
		return
	}
	if sl.held {
		return
	}
	sl.held = true
	if sl.on {
		return
	}
	sl.on = true
	slog.Debug("slot on", "key", key, "path", sl.Want())
	s.startSlotLoad(sl)
}

// KeyUp reverts the slot to its off variant.
func (s *Session) KeyUp(key string) {
	sl := s.slots[key]
	if sl == nil {
		return
	}
	sl.held = false
	if !sl.on {
		return
	}
	sl.on = false
	slog.Debug("slot off", "key", key, "path", sl.Want())
	s.startSlotLoad(sl)
}

// Reload re-issues the load for any destination currently showing path.
// The frame is never recomputed, so a reshaped base asset keeps its
// original scale and offset. Returns true when something matched.
func (s *Session) Reload(path string) bool {
	if !s.started {
		return false
	}
	matched := false
	for i, p := range s.opts.ModelPaths {
		if p != path {
			continue
		}
		if i > 0 && s.frame == nil {
			continue
		}
		s.startLoad(staticDest(i), "", p)
		matched = true
	}
	for _, key := range s.slotOrder {
		sl := s.slots[key]
		if sl.Want() != path {
			continue
		}
		if s.scene.BySlot(key) == nil && !sl.pending {
			continue
		}
		s.startSlotLoad(sl)
		matched = true
	}
	return matched
}

func staticDest(i int) string {
	return fmt.Sprintf("model:%d", i)
}

func (s *Session) startLoad(dest, slot, path string) {
	if cancel := s.cancels[dest]; cancel != nil {
		cancel()
	}
	s.gens[dest]++
	gen := s.gens[dest]
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancels[dest] = cancel

	go func() {
		asset, err := s.load(ctx, path)
		select {
		case s.results <- result{dest: dest, gen: gen, slot: slot, path: path, asset: asset, err: err}:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Session) startSlotLoad(sl *Slot) {
	sl.pending = true
	s.startLoad("slot:"+sl.Key, sl.Key, sl.Want())
}

func (s *Session) apply(r result) {
	if r.gen != s.gens[r.dest] {
		// Superseded while in flight; the decoded asset is dropped before
		// it ever reaches the scene.
		slog.Debug("stale load dropped", "path", r.path)
		return
	}
	if cancel := s.cancels[r.dest]; cancel != nil {
		cancel()
		delete(s.cancels, r.dest)
	}
	if r.slot != "" {
		s.applySlot(r)
		return
	}
	s.applyStatic(r)
}

func (s *Session) applyStatic(r result) {
	base := r.dest == staticDest(0)
	if r.err != nil {
		s.loadErr = fmt.Errorf("%s: %w", r.path, r.err)
		if base && s.frame == nil {
			// Without a frame nothing can be placed, so the remaining
			// parts are never requested.
			s.baseErr = s.loadErr
			slog.Error("base asset failed", "path", r.path, "err", r.err)
			return
		}
		slog.Error("asset failed", "path", r.path, "err", r.err)
		return
	}

	if base && s.frame == nil {
		frame, err := ComputeFrame(r.asset, s.rotation)
		if err != nil {
			s.baseErr = fmt.Errorf("%s: %w", r.path, err)
			s.loadErr = s.baseErr
			slog.Error("base asset unusable", "path", r.path, "err", err)
			return
		}
		s.frame = &frame
		s.root = frame.RootTransform(s.rotation)
		s.baseErr = nil
		slog.Info("frame computed",
			"scale", frame.Scale,
			"offset", fmt.Sprintf("(%.3f, %.3f, %.3f)", frame.Offset.X(), frame.Offset.Y(), frame.Offset.Z()))
	}

	s.loadErr = nil
	s.place(r)

	if base {
		for i := 1; i < len(s.opts.ModelPaths); i++ {
			if _, running := s.gens[staticDest(i)]; !running {
				s.startLoad(staticDest(i), "", s.opts.ModelPaths[i])
			}
		}
	}
}

func (s *Session) place(r result) {
	r.asset.SetShadowFlags(s.opts.CastShadow, s.opts.ReceiveShadow)
	if prev, ok := s.static[r.dest]; ok {
		s.scene.Remove(prev)
		inst := s.scene.Add(r.asset, "")
		s.static[r.dest] = inst.ID
		slog.Info("part reloaded", "path", r.path)
		return
	}
	inst := s.scene.Add(r.asset, "")
	s.static[r.dest] = inst.ID
	s.loaded++
	s.updateProgress()
	slog.Info("part loaded", "path", r.path, "progress", s.progress)
}

func (s *Session) applySlot(r result) {
	sl := s.slots[r.slot]
	if sl == nil {
		return
	}
	sl.pending = false
	if r.err != nil {
		// The resident variant, if any, stays put.
		s.loadErr = fmt.Errorf("%s: %w", r.path, r.err)
		slog.Error("slot asset failed", "key", r.slot, "path", r.path, "err", r.err)
		return
	}
	if prev := s.scene.BySlot(r.slot); prev != nil {
		s.scene.Remove(prev.ID)
	}
	r.asset.SetShadowFlags(s.opts.CastShadow, s.opts.ReceiveShadow)
	s.scene.Add(r.asset, r.slot)
	s.loadErr = nil
	slog.Debug("slot swapped", "key", r.slot, "path", r.path)
}

func (s *Session) updateProgress() {
	pct := int(math.Round(100 * float64(s.loaded) / float64(s.total)))
	if pct > s.progress {
		s.progress = pct
	}
	if s.loaded == s.total && !s.ready {
		s.ready = true
		slog.Info("all parts resident", "parts", s.loaded)
		for _, key := range s.slotOrder {
			s.startSlotLoad(s.slots[key])
		}
	}
}

// Progress returns the load percentage, rounded, monotonic.
func (s *Session) Progress() int {
	return s.progress
}

// Ready reports whether every static part is resident.
func (s *Session) Ready() bool {
	return s.ready
}

// Frame returns the normalization frame once the base asset has loaded.
func (s *Session) Frame() (Frame, bool) {
	if s.frame == nil {
		return Frame{}, false
	}
	return *s.frame, true
}

// Err returns the most recent load failure, if any.
func (s *Session) Err() error {
	return s.loadErr
}

// BaseFailed reports whether the base asset could not be loaded or framed.
func (s *Session) BaseFailed() bool {
	return s.baseErr != nil
}

// Yaw returns the current scene spin angle in radians.
func (s *Session) Yaw() float32 {
	return s.yaw
}

// Scene exposes the resident instances for inspection.
func (s *Session) Scene() *Scene {
	return s.scene
}

// DrawItem pairs an asset with its per-node world matrices for one frame.
// Root is the shared transform above the asset (frame, rotation, spin) and
// Bounds the rest-pose box in asset space, for shadow volumes and debug
// wireframes.
type DrawItem struct {
	Asset  *model.Asset
	World  []mgl32.Mat4
	Root   mgl32.Mat4
	Bounds model.Box
}

// DrawItems computes world matrices for every resident instance under the
// frame, model rotation, and current spin. Nil until the frame exists.
func (s *Session) DrawItems() []DrawItem {
	if s.frame == nil {
		return nil
	}
	pre := mgl32.HomogRotate3DY(s.yaw).Mul4(s.root)
	items := make([]DrawItem, 0, s.scene.Len())
	for _, inst := range s.scene.Instances() {
		var world []mgl32.Mat4
		if inst.Mixer != nil {
			world = inst.Mixer.Pose(pre)
		} else {
			world = inst.Asset.WorldMatrices(pre)
		}
		items = append(items, DrawItem{
			Asset:  inst.Asset,
			World:  world,
			Root:   pre,
			Bounds: inst.Bounds,
		})
	}
	return items
}

// Status is a snapshot for the window title and the remote inspector.
type Status struct {
	Progress  int             `json:"progress"`
	Ready     bool            `json:"ready"`
	Parts     int             `json:"parts"`
	Triangles int             `json:"triangles"`
	Yaw       float32         `json:"yaw"`
	Slots     map[string]bool `json:"slots,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Status snapshots the session for display.
func (s *Session) Status() Status {
	st := Status{
		Progress:  s.progress,
		Ready:     s.ready,
		Parts:     s.scene.Len(),
		Triangles: s.scene.Triangles(),
		Yaw:       s.yaw,
	}
	if len(s.slots) > 0 {
		st.Slots = make(map[string]bool, len(s.slots))
		for key, sl := range s.slots {
			st.Slots[key] = sl.on
		}
	}
	if s.loadErr != nil {
		st.Error = s.loadErr.Error()
	}
	return st
}
