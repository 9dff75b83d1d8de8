// Package spriteset implements named pose animations with a shared base
// (footprint) rectangle.
package spriteset

import (
	"image"
	"strings"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/gfx"
)

// Frame is one step of a pose animation.
type Frame struct {
	ImageIndex int
	Delay      int
}

// Pose is a named animation sequence, usually a facing direction.
type Pose struct {
	Name   string
	Frames []Frame
}

// Spriteset owns frame images and poses. It is shared between persons by
// reference counting.
type Spriteset struct {
	Filename string
	images   []*image.NRGBA
	poses    []Pose
	base     core.Rect
	refs     int
}

// DefaultPoseNames are the eight directions of version 1 and 2 files.
var DefaultPoseNames = []string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// New creates a spriteset. Poses without frames get a single frame showing
// image 0, since every pose must be drawable.
func New(base core.Rect, images []*image.NRGBA, poses []Pose) *Spriteset {
	ss := &Spriteset{
		images: images,
		poses:  make([]Pose, len(poses)),
		base:   base.Normalize(),
		refs:   1,
	}
	for i, p := range poses {
		frames := append([]Frame(nil), p.Frames...)
		if len(frames) == 0 {
			frames = []Frame{{ImageIndex: 0, Delay: 8}}
		}
		ss.poses[i] = Pose{Name: p.Name, Frames: frames}
	}
	return ss
}

// Ref adds a reference and returns the spriteset.
func (ss *Spriteset) Ref() *Spriteset {
	if ss != nil {
		ss.refs++
	}
	return ss
}

// Release drops a reference. It returns true when the last one is gone.
func (ss *Spriteset) Release() bool {
	if ss == nil || ss.refs <= 0 {
		return false
	}
	ss.refs--
	return ss.refs == 0
}

// Refs returns the current reference count.
func (ss *Spriteset) Refs() int {
	return ss.refs
}

// Clone returns a private copy with its own poses and base. Images are
// shared, since nothing mutates frame pixels in place.
func (ss *Spriteset) Clone() *Spriteset {
	images := append([]*image.NRGBA(nil), ss.images...)
	clone := New(ss.base, images, ss.poses)
	clone.Filename = ss.Filename
	return clone
}

// Base returns the footprint rectangle relative to the frame's top left.
func (ss *Spriteset) Base() core.Rect {
	return ss.base
}

// SetBase replaces the footprint rectangle.
func (ss *Spriteset) SetBase(r core.Rect) {
	ss.base = r.Normalize()
}

// NumImages returns the number of frame images.
func (ss *Spriteset) NumImages() int {
	return len(ss.images)
}

// Image returns frame image i.
func (ss *Spriteset) Image(i int) *image.NRGBA {
	return ss.images[i]
}

// SetImage replaces frame image i.
func (ss *Spriteset) SetImage(i int, img *image.NRGBA) {
	ss.images[i] = img
}

// Poses returns the poses in file order.
func (ss *Spriteset) Poses() []Pose {
	return ss.poses
}

// PoseNames lists the pose names in file order.
func (ss *Spriteset) PoseNames() []string {
	names := make([]string, len(ss.poses))
	for i, p := range ss.poses {
		names[i] = p.Name
	}
	return names
}

// FirstPose returns the name of the first pose, which persons face by default.
func (ss *Spriteset) FirstPose() string {
	if len(ss.poses) == 0 {
		return ""
	}
	return ss.poses[0].Name
}

// Width returns the widest frame image.
func (ss *Spriteset) Width() int {
	w := 0
	for _, img := range ss.images {
		w = core.Max(w, img.Bounds().Dx())
	}
	return w
}

// Height returns the tallest frame image.
func (ss *Spriteset) Height() int {
	h := 0
	for _, img := range ss.images {
		h = core.Max(h, img.Bounds().Dy())
	}
	return h
}

// FindPose looks a pose up by name, case-insensitively. A diagonal or
// decorated name falls back to the cardinal direction it contains, then to
// the first pose.
func (ss *Spriteset) FindPose(name string) *Pose {
	if len(ss.poses) == 0 {
		return nil
	}
	if p := ss.lookup(name); p != nil {
		return p
	}
	lower := strings.ToLower(name)
	for _, dir := range []string{"north", "south", "east", "west"} {
		if strings.Contains(lower, dir) {
			if p := ss.lookup(dir); p != nil {
				return p
			}
			break
		}
	}
	return &ss.poses[0]
}

func (ss *Spriteset) lookup(name string) *Pose {
	for i := range ss.poses {
		if strings.EqualFold(ss.poses[i].Name, name) {
			return &ss.poses[i]
		}
	}
	return nil
}

// NumFrames returns the frame count of a pose.
func (ss *Spriteset) NumFrames(pose string) int {
	p := ss.FindPose(pose)
	if p == nil {
		return 0
	}
	return len(p.Frames)
}

// FrameDelay returns the delay of frame index of a pose. The index wraps.
func (ss *Spriteset) FrameDelay(pose string, frame int) int {
	p := ss.FindPose(pose)
	if p == nil {
		return 0
	}
	return p.Frames[core.Wrap(frame, len(p.Frames))].Delay
}

// FrameImage returns the image shown by frame index of a pose.
func (ss *Spriteset) FrameImage(pose string, frame int) *image.NRGBA {
	p := ss.FindPose(pose)
	if p == nil || len(ss.images) == 0 {
		return nil
	}
	idx := p.Frames[core.Wrap(frame, len(p.Frames))].ImageIndex
	if idx < 0 || idx >= len(ss.images) {
		return nil
	}
	return ss.images[idx]
}

// DrawOptions describe how a single sprite frame is drawn.
type DrawOptions struct {
	Mask    core.Color
	Flipped bool
	Theta   float64
	ScaleX  float64
	ScaleY  float64
}

// Draw blits the given frame of a pose with its top left at (x, y).
func (ss *Spriteset) Draw(r gfx.Renderer, pose string, frame, x, y int, opts DrawOptions) {
	img := ss.FrameImage(pose, frame)
	if img == nil {
		return
	}
	r.Blit(img, x, y, gfx.DrawOptions{
		Tint:   opts.Mask,
		FlipV:  opts.Flipped,
		ScaleX: opts.ScaleX,
		ScaleY: opts.ScaleY,
		Angle:  opts.Theta,
	})
}
