package spriteset

import (
	"bytes"
	"image"
	"testing"

	"github.com/vovakirdan/minisphere/internal/binfmt"
	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/gfx"
)

func frameImages(n, w, h int) []*image.NRGBA {
	images := make([]*image.NRGBA, n)
	for i := range images {
		images[i] = image.NewNRGBA(image.Rect(0, 0, w, h))
		images[i].Pix[0] = uint8(i + 1)
	}
	return images
}

func newTestSpriteset() *Spriteset {
	return New(core.Rect{X1: 12, Y1: 24, X2: 4, Y2: 32}, frameImages(4, 16, 32), []Pose{
		{Name: "south", Frames: []Frame{{0, 8}, {1, 4}}},
		{Name: "north", Frames: []Frame{{2, 8}, {3, 8}}},
	})
}

func TestBaseIsNormalized(t *testing.T) {
	ss := newTestSpriteset()
	expected := core.Rect{X1: 4, Y1: 24, X2: 12, Y2: 32}
	if got := ss.Base(); got != expected {
		t.Errorf("Base() = %v, expected %v", got, expected)
	}
}

func TestFindPose(t *testing.T) {
	ss := newTestSpriteset()

	tests := []struct {
		name     string
		expected string
	}{
		{"south", "south"},
		{"NORTH", "north"},
		{"northeast", "north"},
		{"southwest", "south"},
		{"east", "south"},
		{"dancing", "south"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ss.FindPose(tc.name).Name; got != tc.expected {
				t.Errorf("FindPose(%q) = %q, expected %q", tc.name, got, tc.expected)
			}
		})
	}
}

func TestFrameDelayWraps(t *testing.T) {
	ss := newTestSpriteset()
	if got := ss.FrameDelay("south", 1); got != 4 {
		t.Errorf("FrameDelay(south, 1) = %d, expected 4", got)
	}
	if got := ss.FrameDelay("south", 3); got != 4 {
		t.Errorf("FrameDelay(south, 3) = %d, expected 4", got)
	}
	if got := ss.NumFrames("north"); got != 2 {
		t.Errorf("NumFrames(north) = %d, expected 2", got)
	}
}

func TestDraw(t *testing.T) {
	ss := newTestSpriteset()
	rec := gfx.NewRecorder(320, 240)
	ss.Draw(rec, "north", 1, 10, 20, DrawOptions{Mask: core.White, Flipped: true, ScaleX: 2, ScaleY: 2})

	blits := rec.Blits()
	if len(blits) != 1 {
		t.Fatalf("Draw produced %d blits, expected 1", len(blits))
	}
	if blits[0].Image != ss.Image(3) {
		t.Error("Draw should blit image 3 for north frame 1")
	}
	if !blits[0].Opts.FlipV || blits[0].Opts.ScaleX != 2 {
		t.Errorf("Draw options = %+v, expected flipped and scaled", blits[0].Opts)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ss := newTestSpriteset()
	clone := ss.Clone()
	clone.SetBase(core.NewRect(0, 0, 1, 1))
	clone.Poses()[0].Frames[0].Delay = 99

	if ss.Base() == clone.Base() {
		t.Error("Clone shares its base with the original")
	}
	if ss.FrameDelay("south", 0) != 8 {
		t.Error("Clone shares its frames with the original")
	}
	if clone.Refs() != 1 {
		t.Errorf("clone Refs() = %d, expected 1", clone.Refs())
	}
}

func TestRefRelease(t *testing.T) {
	ss := newTestSpriteset()
	ss.Ref()
	if ss.Release() {
		t.Error("Release() = true with a reference still held")
	}
	if !ss.Release() {
		t.Error("Release() = false for the last reference")
	}
}

func TestRSSRoundTripV3(t *testing.T) {
	ss := newTestSpriteset()

	var buf bytes.Buffer
	if err := Write(&buf, ss); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if got.Base() != ss.Base() {
		t.Errorf("Base() = %v, expected %v", got.Base(), ss.Base())
	}
	if names := got.PoseNames(); len(names) != 2 || names[0] != "south" || names[1] != "north" {
		t.Errorf("PoseNames() = %v, expected [south north]", names)
	}
	if got.FrameDelay("south", 1) != 4 {
		t.Errorf("FrameDelay(south, 1) = %d, expected 4", got.FrameDelay("south", 1))
	}
	if got.FrameImage("north", 1).Pix[0] != 4 {
		t.Error("north frame 1 should show image 3")
	}
	if got.Width() != 16 || got.Height() != 32 {
		t.Errorf("size = %dx%d, expected 16x32", got.Width(), got.Height())
	}
}

func TestReadV1(t *testing.T) {
	var buf bytes.Buffer
	hdr := rssHeader{
		Signature:   binfmt.Signature(rssSignature),
		Version:     1,
		NumImages:   64,
		FrameWidth:  2,
		FrameHeight: 2,
		BaseX2:      2,
		BaseY2:      2,
	}
	if err := binfmt.WriteStruct(&buf, &hdr); err != nil {
		t.Fatal(err)
	}
	buf.Write(make([]byte, 64*2*2*4))

	ss, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(ss.Poses()) != 8 || ss.FirstPose() != "north" {
		t.Errorf("poses = %v, expected the eight default directions", ss.PoseNames())
	}
	if ss.NumFrames("southwest") != 8 || ss.FrameDelay("west", 5) != 8 {
		t.Error("version 1 directions have eight frames with delay 8")
	}
}

func TestReadV2(t *testing.T) {
	var buf bytes.Buffer
	hdr := rssHeader{
		Signature:     binfmt.Signature(rssSignature),
		Version:       2,
		FrameWidth:    4,
		FrameHeight:   4,
		NumDirections: 2,
	}
	if err := binfmt.WriteStruct(&buf, &hdr); err != nil {
		t.Fatal(err)
	}
	for d := 0; d < 2; d++ {
		if err := binfmt.WriteStruct(&buf, &rssDirV2{NumFrames: uint8(d + 1)}); err != nil {
			t.Fatal(err)
		}
		for f := 0; f <= d; f++ {
			if err := binfmt.WriteStruct(&buf, &rssFrameV2{Width: 3, Height: 5, Delay: 6}); err != nil {
				t.Fatal(err)
			}
			buf.Write(make([]byte, 3*5*4))
		}
	}

	ss, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if ss.NumImages() != 3 {
		t.Errorf("NumImages() = %d, expected 3", ss.NumImages())
	}
	if ss.NumFrames("northeast") != 2 || ss.FrameDelay("northeast", 1) != 6 {
		t.Error("second direction should be northeast with two frames of delay 6")
	}
	if ss.Width() != 3 || ss.Height() != 5 {
		t.Errorf("size = %dx%d, expected 3x5", ss.Width(), ss.Height())
	}
}

func TestReadRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	hdr := rssHeader{Signature: binfmt.Signature(rssSignature), Version: 7, FrameWidth: 1, FrameHeight: 1}
	if err := binfmt.WriteStruct(&buf, &hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(&buf); err == nil {
		t.Error("Read() should reject unknown versions")
	}
}

func TestReadRejectsNegativeCounts(t *testing.T) {
	tests := []struct {
		name    string
		version int16
		images  int16
		dirs    int16
	}{
		{"v2 directions", 2, 0, -1},
		{"v3 images", 3, -2, 1},
		{"v3 directions", 3, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			hdr := rssHeader{
				Signature:     binfmt.Signature(rssSignature),
				Version:       tt.version,
				NumImages:     tt.images,
				FrameWidth:    1,
				FrameHeight:   1,
				NumDirections: tt.dirs,
			}
			if err := binfmt.WriteStruct(&buf, &hdr); err != nil {
				t.Fatal(err)
			}
			buf.Write(make([]byte, 64))
			if _, err := Read(&buf); err == nil {
				t.Errorf("Read() with %d images in %d directions should fail", tt.images, tt.dirs)
			}
		})
	}
}
