package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
)

// DirectionalLightMatrix computes the view-projection matrix for the
// shadow depth pass. dir is the normalized direction TO the light and
// bounds is the box the shadows must cover.
func DirectionalLightMatrix(dir mgl32.Vec3, bounds model.Box) mgl32.Mat4 {
	center := bounds.Center()
	radius := bounds.Size().Len() / 2
	if radius == 0 {
		radius = 1
	}

	// Position the light far enough back to cover the whole volume.
	lightDistance := radius * 2
	lightPos := center.Add(dir.Mul(lightDistance))

	// Avoid an up vector parallel with the light direction.
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Y()) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}

	view := mgl32.LookAtV(lightPos, center, up)

	// Pad the orthographic volume to avoid edge artifacts.
	padding := radius * 0.1
	halfSize := radius + padding
	far := lightDistance + radius + padding

	proj := mgl32.Ortho(-halfSize, halfSize, -halfSize, halfSize, 0.1, far)

	return proj.Mul4(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
