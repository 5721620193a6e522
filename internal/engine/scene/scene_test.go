package scene

import "testing"

func TestSceneAspectFollowsResize(t *testing.T) {
	s := &Scene{config: DefaultConfig()}

	if got, want := s.Aspect(), float32(1280)/720; got != want {
		t.Errorf("default aspect = %v, want %v", got, want)
	}

	s.Resize(1000, 500)
	if got := s.Aspect(); got != 2 {
		t.Errorf("aspect after resize = %v, want 2", got)
	}

	s.Resize(800, 0)
	if got := s.Aspect(); got != 1 {
		t.Errorf("zero height aspect = %v, want 1", got)
	}
}

func TestSceneShowTilesToggle(t *testing.T) {
	s := &Scene{config: DefaultConfig()}
	if s.ShowTiles() {
		t.Fatal("tile overlay should start hidden")
	}
	s.SetShowTiles(true)
	if !s.ShowTiles() {
		t.Error("tile overlay should be shown after SetShowTiles(true)")
	}
}
