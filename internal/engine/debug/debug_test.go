package debug

import (
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWireframeVertices(t *testing.T) {
	verts := WireframeVertices(mgl32.Vec3{-1, -2, -3}, mgl32.Vec3{1, 2, 3})

	if len(verts) != WireframeVertexCount*3 {
		t.Fatalf("expected %d floats, got %d", WireframeVertexCount*3, len(verts))
	}

	// Every emitted coordinate must sit on the box surface.
	for i := 0; i < len(verts); i += 3 {
		x, y, z := verts[i], verts[i+1], verts[i+2]
		if x != -1 && x != 1 {
			t.Errorf("vertex %d: x=%f not on box", i/3, x)
		}
		if y != -2 && y != 2 {
			t.Errorf("vertex %d: y=%f not on box", i/3, y)
		}
		if z != -3 && z != 3 {
			t.Errorf("vertex %d: z=%f not on box", i/3, z)
		}
	}
}

func TestWireframeCoversAllCorners(t *testing.T) {
	verts := WireframeVertices(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})

	seen := make(map[[3]float32]int)
	for i := 0; i < len(verts); i += 3 {
		seen[[3]float32{verts[i], verts[i+1], verts[i+2]}]++
	}

	// A cube has 8 corners, each shared by 3 edges.
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct corners, got %d", len(seen))
	}
	for corner, count := range seen {
		if count != 3 {
			t.Errorf("corner %v appears %d times, want 3", corner, count)
		}
	}
}

func TestTransformedWireframe(t *testing.T) {
	m := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DY(float32(gomath.Pi / 2)))
	verts := TransformedWireframeVertices(mgl32.Vec3{-1, 0, -2}, mgl32.Vec3{1, 0, 2}, m)

	// A quarter turn about Y maps the long Z extent onto X.
	minX, maxX := verts[0], verts[0]
	for i := 0; i < len(verts); i += 3 {
		if verts[i] < minX {
			minX = verts[i]
		}
		if verts[i] > maxX {
			maxX = verts[i]
		}
	}

	if gomath.Abs(float64(minX-8)) > 1e-4 || gomath.Abs(float64(maxX-12)) > 1e-4 {
		t.Errorf("transformed x extent [%f, %f], want [8, 12]", minX, maxX)
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "test")

	// 2x1 image: red pixel bottom-left, blue pixel bottom-right.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}

	path, err := sc.CaptureFromPixels(pixels, 2, 1)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding screenshot: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Errorf("unexpected size %v", img.Bounds())
	}

	r, _, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Errorf("expected red pixel at (0,0), got r=%d", r>>8)
	}
}

func TestCaptureFlipsRows(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "flip")

	// 1x2 image: bottom row red, top row blue (OpenGL order).
	pixels := []byte{
		255, 0, 0, 255, // row 0 = bottom
		0, 0, 255, 255, // row 1 = top
	}

	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding screenshot: %v", err)
	}

	// The top row of the PNG must be the top row of the scene (blue).
	_, _, b, _ := img.At(0, 0).RGBA()
	if b>>8 != 255 {
		t.Errorf("expected blue at image top after flip, got b=%d", b>>8)
	}
	r, _, _, _ := img.At(0, 1).RGBA()
	if r>>8 != 255 {
		t.Errorf("expected red at image bottom after flip, got r=%d", r>>8)
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "bad")

	if _, err := sc.CaptureFromPixels([]byte{1, 2, 3}, 2, 2); err == nil {
		t.Error("expected error for short pixel buffer")
	}
}

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("shots", "showroom")

	name := sc.GenerateFilename()
	if filepath.Dir(name) != "shots" {
		t.Errorf("expected shots dir, got %s", name)
	}
	base := filepath.Base(name)
	if !strings.HasPrefix(base, "showroom_") {
		t.Errorf("expected showroom_ prefix, got %s", base)
	}
	if filepath.Ext(name) != ".png" {
		t.Errorf("expected .png extension, got %s", name)
	}
}
