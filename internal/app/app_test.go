package app

import (
	"reflect"
	"testing"

	"github.com/Faultbox/showroom/internal/config"
	"github.com/Faultbox/showroom/internal/viewer"
)

func TestTitleFor(t *testing.T) {
	tests := []struct {
		name string
		st   viewer.Status
		want string
	}{
		{
			name: "loading",
			st:   viewer.Status{Progress: 40},
			want: "Showroom [loading 40%]",
		},
		{
			name: "ready",
			st:   viewer.Status{Ready: true, Progress: 100, Parts: 3, Triangles: 1200},
			want: "Showroom [3 parts, 1200 tris]",
		},
		{
			name: "error wins over progress",
			st:   viewer.Status{Progress: 66, Error: "open base.glb: no such file"},
			want: "Showroom [load failed: open base.glb: no such file]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFor("Showroom", tt.st); got != tt.want {
				t.Errorf("titleFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatchPaths(t *testing.T) {
	models := []string{"base.glb", "hair.glb", "base.glb"}
	slots := []config.KeySlot{
		{Key: "1", Off: "acc_off.glb", On: "acc_on.glb"},
		{Key: "2", Off: "hair.glb", On: "hat.glb"},
	}

	got := watchPaths(models, slots)
	want := []string{"base.glb", "hair.glb", "acc_off.glb", "acc_on.glb", "hat.glb"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("watchPaths() = %v, want %v", got, want)
	}
}

func TestWatchPathsSkipsEmpty(t *testing.T) {
	got := watchPaths([]string{"", "base.glb"}, nil)
	want := []string{"base.glb"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("watchPaths() = %v, want %v", got, want)
	}
}
