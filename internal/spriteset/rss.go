package spriteset

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/vovakirdan/minisphere/internal/binfmt"
	"github.com/vovakirdan/minisphere/internal/core"
)

const rssSignature = ".rss"

// rssHeader is the 128-byte file header shared by all versions.
type rssHeader struct {
	Signature     [4]byte
	Version       int16
	NumImages     int16
	FrameWidth    int16
	FrameHeight   int16
	NumDirections int16
	BaseX1        int16
	BaseY1        int16
	BaseX2        int16
	BaseY2        int16
	Reserved      [106]byte
}

type rssDirV2 struct {
	NumFrames uint8
	Reserved  [62]byte
}

type rssFrameV2 struct {
	Width    uint16
	Height   uint16
	Delay    uint16
	Reserved [26]byte
}

type rssDirV3 struct {
	NumFrames int16
	Reserved  [6]byte
}

type rssFrameV3 struct {
	ImageIndex int16
	Delay      int16
	Reserved   [4]byte
}

const (
	v1Directions = 8
	v1Frames     = 8
	v1Delay      = 8
)

// Load reads an .rss file from disk.
func Load(path string) (*Spriteset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}
	defer f.Close()
	ss, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	ss.Filename = path
	return ss, nil
}

// Read decodes an RSS spriteset of version 1, 2 or 3.
func Read(r io.Reader) (*Spriteset, error) {
	var hdr rssHeader
	if err := binfmt.ReadStruct(r, &hdr); err != nil {
		return nil, fmt.Errorf("rss: reading header: %w", err)
	}
	if err := binfmt.CheckSignature(hdr.Signature, rssSignature); err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}
	if hdr.FrameWidth <= 0 || hdr.FrameHeight <= 0 {
		return nil, fmt.Errorf("rss: bad frame size %dx%d", hdr.FrameWidth, hdr.FrameHeight)
	}
	if hdr.NumImages < 0 || hdr.NumDirections < 0 {
		return nil, fmt.Errorf("rss: bad counts %d images in %d directions", hdr.NumImages, hdr.NumDirections)
	}
	base := core.Rect{X1: int(hdr.BaseX1), Y1: int(hdr.BaseY1), X2: int(hdr.BaseX2), Y2: int(hdr.BaseY2)}

	var (
		images []*image.NRGBA
		poses  []Pose
		err    error
	)
	switch hdr.Version {
	case 1:
		images, poses, err = readV1(r, &hdr)
	case 2:
		images, poses, err = readV2(r, &hdr)
	case 3:
		images, poses, err = readV3(r, &hdr)
	default:
		return nil, fmt.Errorf("rss: unsupported version %d", hdr.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("rss: v%d: %w", hdr.Version, err)
	}
	if len(poses) == 0 {
		return nil, fmt.Errorf("rss: spriteset has no directions")
	}
	return New(base, images, poses), nil
}

func readImage(r io.Reader, w, h int) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(r, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}

func poseName(i int) string {
	if i < len(DefaultPoseNames) {
		return DefaultPoseNames[i]
	}
	return fmt.Sprintf("direction%d", i)
}

// readV1 handles the fixed layout of eight directions with eight frames each.
func readV1(r io.Reader, hdr *rssHeader) ([]*image.NRGBA, []Pose, error) {
	w, h := int(hdr.FrameWidth), int(hdr.FrameHeight)
	images := make([]*image.NRGBA, 0, v1Directions*v1Frames)
	poses := make([]Pose, v1Directions)
	for d := 0; d < v1Directions; d++ {
		poses[d].Name = DefaultPoseNames[d]
		for f := 0; f < v1Frames; f++ {
			img, err := readImage(r, w, h)
			if err != nil {
				return nil, nil, fmt.Errorf("reading image %d: %w", len(images), err)
			}
			poses[d].Frames = append(poses[d].Frames, Frame{ImageIndex: len(images), Delay: v1Delay})
			images = append(images, img)
		}
	}
	return images, poses, nil
}

// readV2 handles directions whose frames each embed their own image.
func readV2(r io.Reader, hdr *rssHeader) ([]*image.NRGBA, []Pose, error) {
	var images []*image.NRGBA
	poses := make([]Pose, hdr.NumDirections)
	for d := range poses {
		var dir rssDirV2
		if err := binfmt.ReadStruct(r, &dir); err != nil {
			return nil, nil, fmt.Errorf("reading direction %d: %w", d, err)
		}
		poses[d].Name = poseName(d)
		for f := 0; f < int(dir.NumFrames); f++ {
			var frame rssFrameV2
			if err := binfmt.ReadStruct(r, &frame); err != nil {
				return nil, nil, fmt.Errorf("reading direction %d frame %d: %w", d, f, err)
			}
			img, err := readImage(r, int(frame.Width), int(frame.Height))
			if err != nil {
				return nil, nil, fmt.Errorf("reading direction %d frame %d image: %w", d, f, err)
			}
			poses[d].Frames = append(poses[d].Frames, Frame{ImageIndex: len(images), Delay: int(frame.Delay)})
			images = append(images, img)
		}
	}
	return images, poses, nil
}

// readV3 handles an image table followed by named directions that index it.
func readV3(r io.Reader, hdr *rssHeader) ([]*image.NRGBA, []Pose, error) {
	w, h := int(hdr.FrameWidth), int(hdr.FrameHeight)
	images := make([]*image.NRGBA, hdr.NumImages)
	for i := range images {
		img, err := readImage(r, w, h)
		if err != nil {
			return nil, nil, fmt.Errorf("reading image %d: %w", i, err)
		}
		images[i] = img
	}
	poses := make([]Pose, hdr.NumDirections)
	for d := range poses {
		var dir rssDirV3
		if err := binfmt.ReadStruct(r, &dir); err != nil {
			return nil, nil, fmt.Errorf("reading direction %d: %w", d, err)
		}
		name, err := binfmt.ReadLString(r)
		if err != nil {
			return nil, nil, fmt.Errorf("reading direction %d name: %w", d, err)
		}
		poses[d].Name = name
		for f := 0; f < int(dir.NumFrames); f++ {
			var frame rssFrameV3
			if err := binfmt.ReadStruct(r, &frame); err != nil {
				return nil, nil, fmt.Errorf("reading direction %d frame %d: %w", d, f, err)
			}
			if int(frame.ImageIndex) < 0 || int(frame.ImageIndex) >= len(images) {
				return nil, nil, fmt.Errorf("direction %d frame %d references image %d of %d", d, f, frame.ImageIndex, len(images))
			}
			poses[d].Frames = append(poses[d].Frames, Frame{ImageIndex: int(frame.ImageIndex), Delay: int(frame.Delay)})
		}
	}
	return images, poses, nil
}

// Write encodes ss as a version 3 spriteset. All images must share the size
// of the first one.
func Write(w io.Writer, ss *Spriteset) error {
	if len(ss.images) == 0 {
		return fmt.Errorf("rss: spriteset has no images")
	}
	fw, fh := ss.images[0].Bounds().Dx(), ss.images[0].Bounds().Dy()
	hdr := rssHeader{
		Signature:     binfmt.Signature(rssSignature),
		Version:       3,
		NumImages:     int16(len(ss.images)),
		FrameWidth:    int16(fw),
		FrameHeight:   int16(fh),
		NumDirections: int16(len(ss.poses)),
		BaseX1:        int16(ss.base.X1),
		BaseY1:        int16(ss.base.Y1),
		BaseX2:        int16(ss.base.X2),
		BaseY2:        int16(ss.base.Y2),
	}
	if err := binfmt.WriteStruct(w, &hdr); err != nil {
		return fmt.Errorf("rss: writing header: %w", err)
	}

	for i, img := range ss.images {
		b := img.Bounds()
		if b.Dx() != fw || b.Dy() != fh {
			return fmt.Errorf("rss: image %d is %dx%d, expected %dx%d", i, b.Dx(), b.Dy(), fw, fh)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			if _, err := w.Write(img.Pix[off : off+fw*4]); err != nil {
				return fmt.Errorf("rss: writing image %d: %w", i, err)
			}
		}
	}

	for d, p := range ss.poses {
		dir := rssDirV3{NumFrames: int16(len(p.Frames))}
		if err := binfmt.WriteStruct(w, &dir); err != nil {
			return fmt.Errorf("rss: writing direction %d: %w", d, err)
		}
		if err := binfmt.WriteLString(w, p.Name); err != nil {
			return fmt.Errorf("rss: writing direction %d name: %w", d, err)
		}
		for _, f := range p.Frames {
			frame := rssFrameV3{ImageIndex: int16(f.ImageIndex), Delay: int16(f.Delay)}
			if err := binfmt.WriteStruct(w, &frame); err != nil {
				return fmt.Errorf("rss: writing direction %d frame: %w", d, err)
			}
		}
	}
	return nil
}
