package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/showroom/internal/model"
)

// Instance is one placed copy of an asset. Slot is empty for parts that
// never swap; toggled parts carry their key name so the session can find
// the resident variant.
type Instance struct {
	ID    string
	Slot  string
	Asset *model.Asset
	Mixer *Mixer

	// Bounds is the rest-pose bounding box in asset space, cached at add
	// time for shadow volumes and debug wireframes.
	Bounds model.Box
}

// Scene holds resident instances in draw order. It is plain data owned by
// the session; all mutation happens on the session's tick goroutine.
type Scene struct {
	instances []*Instance
}

func NewScene() *Scene {
	return &Scene{}
}

// Add places an asset and returns the new instance. Assets with animation
// get a mixer; static assets draw from their rest pose.
func (s *Scene) Add(a *model.Asset, slot string) *Instance {
	inst := &Instance{
		ID:    uuid.NewString(),
		Slot:  slot,
		Asset: a,
	}
	if box, ok := a.Bounds(mgl32.Ident4()); ok {
		inst.Bounds = box
	}
	if a.HasAnimation() {
		inst.Mixer = NewMixer(a)
	}
	s.instances = append(s.instances, inst)
	return inst
}

// Remove drops the instance with the given id.
func (s *Scene) Remove(id string) bool {
	for i, inst := range s.instances {
		if inst.ID == id {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			return true
		}
	}
	return false
}

// BySlot returns the resident instance for a slot, or nil.
func (s *Scene) BySlot(slot string) *Instance {
	if slot == "" {
		return nil
	}
	for _, inst := range s.instances {
		if inst.Slot == slot {
			return inst
		}
	}
	return nil
}

// Instances returns the live slice in draw order. Callers must not mutate.
func (s *Scene) Instances() []*Instance {
	return s.instances
}

// Len returns the number of resident instances.
func (s *Scene) Len() int {
	return len(s.instances)
}

// Triangles sums triangle counts across resident instances.
func (s *Scene) Triangles() int {
	n := 0
	for _, inst := range s.instances {
		n += inst.Asset.TriangleCount()
	}
	return n
}
