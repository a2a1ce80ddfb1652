package editor

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/debemdeboas/mdwidget/internal/dom"
)

type viewState struct {
	Fullscreen bool
	Preview    bool
	FullClass  bool
	NoPrevCls  bool
	Overflow   string
}

func (f *fixture) view() viewState {
	c := f.ed.Container()
	return viewState{
		Fullscreen: f.ed.Fullscreen(),
		Preview:    f.ed.PreviewVisible(),
		FullClass:  c.HasClass(FullscreenClass),
		NoPrevCls:  c.HasClass(NoPreviewClass),
		Overflow:   f.doc.Root.Style("overflow"),
	}
}

func TestViewStateMachine(t *testing.T) {
	f := newFixture(t, "# doc", DefaultOptions())

	normal := viewState{}
	fullNoPreview := viewState{Fullscreen: true, FullClass: true, NoPrevCls: true, Overflow: "hidden"}
	fullPreview := viewState{Fullscreen: true, Preview: true, FullClass: true, Overflow: "hidden"}

	steps := []struct {
		name   string
		action func()
		want   viewState
	}{
		{"preview ignored in normal view", f.ed.TogglePreview, normal},
		{"first fullscreen hides preview", f.ed.ToggleFullscreen, fullNoPreview},
		{"show preview", f.ed.TogglePreview, fullPreview},
		{"leave fullscreen", f.ed.ToggleFullscreen, normal},
		{"fullscreen remembers preview", f.ed.ToggleFullscreen, fullPreview},
		{"hide preview", f.ed.TogglePreview, fullNoPreview},
		{"leave again", f.ed.ToggleFullscreen, normal},
		{"fullscreen remembers hidden preview", f.ed.ToggleFullscreen, fullNoPreview},
	}

	for _, s := range steps {
		s.action()
		if diff := cmp.Diff(s.want, f.view()); diff != "" {
			t.Fatalf("%s: state mismatch (-want +got):\n%s", s.name, diff)
		}
	}
}

func TestFullscreenNotifications(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())

	var got []bool
	off := f.ed.OnFullscreen(func(on bool) { got = append(got, on) })
	f.ed.ToggleFullscreen()
	f.ed.TogglePreview()
	f.ed.ToggleFullscreen()
	off()
	f.ed.ToggleFullscreen()

	if diff := cmp.Diff([]bool{true, false}, got); diff != "" {
		t.Errorf("Unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestFullscreenRestoresSize(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	wrapper := f.buffer().Wrapper()
	wrapper.SetStyle("width", "640px")
	wrapper.SetStyle("height", "300px")

	f.ed.ToggleFullscreen()
	if wrapper.Style("width") != "" || wrapper.Style("height") != "auto" {
		t.Errorf("Expected fullscreen sizing, got %q", wrapper.CSSText())
	}
	z, err := strconv.Atoi(f.ed.Container().Style("z-index"))
	if err != nil || z <= 0 {
		t.Errorf("Expected a z-index in fullscreen, got %q", f.ed.Container().Style("z-index"))
	}

	f.ed.ToggleFullscreen()
	if wrapper.Style("width") != "640px" || wrapper.Style("height") != "300px" {
		t.Errorf("Expected size restored, got %q", wrapper.CSSText())
	}
	if f.ed.Container().Style("z-index") != "" {
		t.Error("Expected z-index cleared")
	}
}

func TestFullscreenStacksAboveEarlierLayers(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	d := f.layer.NewDialog("before", "").Open()

	f.ed.ToggleFullscreen()
	dz, _ := strconv.Atoi(d.Element().Style("z-index"))
	ez, _ := strconv.Atoi(f.ed.Container().Style("z-index"))
	if ez <= dz {
		t.Errorf("Expected editor z-index %d above dialog %d", ez, dz)
	}
}

func TestPreviewRendersOnShow(t *testing.T) {
	f := newFixture(t, "# hello", DefaultOptions())

	var rendered []string
	f.ed.OnRender(func(html string) { rendered = append(rendered, html) })

	f.ed.ToggleFullscreen()
	if f.renderer.calls != 0 {
		t.Errorf("Expected no render while the preview is hidden, got %d", f.renderer.calls)
	}
	f.ed.TogglePreview()
	if f.renderer.calls != 1 {
		t.Fatalf("Expected one render, got %d", f.renderer.calls)
	}
	if f.ed.Preview().InnerHTML() != "<p># hello</p>" {
		t.Errorf("Unexpected preview %q", f.ed.Preview().InnerHTML())
	}
	if len(rendered) != 1 || rendered[0] != "<p># hello</p>" {
		t.Errorf("Expected render notification, got %v", rendered)
	}
}

func TestPreviewDebounce(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	f.sched.Flush()
	f.ed.ToggleFullscreen()
	f.ed.TogglePreview()
	base := f.renderer.calls

	f.ed.Replace("a")
	f.sched.Advance(100 * time.Millisecond)
	f.ed.Replace("b")
	f.sched.Advance(100 * time.Millisecond)
	f.ed.Replace("c")
	f.sched.Advance(299 * time.Millisecond)
	if f.renderer.calls != base {
		t.Fatalf("Expected no render inside the quiet period, got %d", f.renderer.calls-base)
	}

	f.sched.Advance(time.Millisecond)
	if f.renderer.calls != base+1 {
		t.Fatalf("Expected exactly one render after the quiet period, got %d", f.renderer.calls-base)
	}
	if f.renderer.last != "abc" {
		t.Errorf("Expected render of the latest content, got %q", f.renderer.last)
	}
}

func TestPreviewSkippedWhenHidden(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	f.sched.Flush()

	f.ed.Replace("x")
	f.sched.Advance(time.Second)
	if f.renderer.calls != 0 {
		t.Errorf("Expected no render outside fullscreen, got %d", f.renderer.calls)
	}

	f.ed.ToggleFullscreen()
	f.ed.Replace("y")
	f.sched.Advance(time.Second)
	if f.renderer.calls != 0 {
		t.Errorf("Expected no render with the preview hidden, got %d", f.renderer.calls)
	}
}

func TestPreviewTimerAbandonedOnExit(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	f.ed.ToggleFullscreen()
	f.ed.TogglePreview()
	base := f.renderer.calls

	f.ed.Replace("z")
	f.ed.ToggleFullscreen()
	f.sched.Advance(time.Second)
	if f.renderer.calls != base {
		t.Errorf("Expected no render after leaving fullscreen, got %d", f.renderer.calls-base)
	}
}

func TestSyncScroll(t *testing.T) {
	tests := []struct {
		name                         string
		srcTop, srcHeight, srcClient float64
		dstHeight, dstClient         float64
		want                         float64
	}{
		{"proportional", 400, 1000, 200, 2000, 400, 800},
		{"top", 0, 1000, 200, 2000, 400, 0},
		{"bottom", 800, 1000, 200, 2000, 400, 1600},
		{"source fits", 0, 200, 200, 2000, 400, 0},
		{"preview fits", 400, 1000, 200, 300, 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "", DefaultOptions())
			src, dst := f.buffer().Scroller(), f.ed.Preview()
			src.ScrollTop, src.ScrollHeight, src.ClientHeight = tt.srcTop, tt.srcHeight, tt.srcClient
			dst.ScrollTop, dst.ScrollHeight, dst.ClientHeight = 123, tt.dstHeight, tt.dstClient

			src.Dispatch(newScrollEvent())
			if dst.ScrollTop != tt.want {
				t.Errorf("Expected preview scrollTop %v, got %v", tt.want, dst.ScrollTop)
			}
		})
	}
}

func newScrollEvent() *dom.Event {
	return dom.NewEvent("scroll")
}
