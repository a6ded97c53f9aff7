package vkcore

import (
	"github.com/pkg/errors"
)

type PackedEntry struct {
	Offset int
	Length int
}

//PackedImages concatenates decoded images into one contiguous byte buffer so a batch (typically the six
//faces of a cube) is uploaded with a single staging buffer. Every entry is assumed to share the
//width and height of the last image added.
type PackedImages struct {
	data     []byte
	entries  []PackedEntry
	capacity int
	width    uint32
	height   uint32
}

func NewPackedImages(capacity int) *PackedImages {
	return &PackedImages{capacity: capacity}
}

// Add appends pixels. The capacity is checked before anything is copied.
func (p *PackedImages) Add(width, height uint32, pixels []byte) error {
	if len(p.data)+len(pixels) > p.capacity {
		return errors.Wrapf(ErrCapacityExceeded, "%d + %d bytes exceeds %d",
			len(p.data), len(pixels), p.capacity)
	}
	p.entries = append(p.entries, PackedEntry{Offset: len(p.data), Length: len(pixels)})
	p.data = append(p.data, pixels...)
	p.width = width
	p.height = height
	return nil
}

// AddStrip splits a strip of count equally sized images stored one after the
// other into count entries of width x height RGBA pixels.
func (p *PackedImages) AddStrip(width, height uint32, pixels []byte, count int) error {
	size := int(width) * int(height) * 4
	if len(pixels) < size*count {
		return errors.Errorf("strip holds %d bytes, %d images of %dx%d need %d", len(pixels), count, width, height, size*count)
	}
	if len(p.data)+size*count > p.capacity {
		return errors.Wrapf(ErrCapacityExceeded, "%d + %d bytes exceeds %d",
			len(p.data), size*count, p.capacity)
	}
	for i := 0; i < count; i++ {
		if err := p.Add(width, height, pixels[i*size:(i+1)*size]); err != nil {
			return err
		}
	}
	return nil
}

func (p *PackedImages) Bytes() []byte           { return p.data }
func (p *PackedImages) Len() int                { return len(p.data) }
func (p *PackedImages) Count() int              { return len(p.entries) }
func (p *PackedImages) Capacity() int           { return p.capacity }
func (p *PackedImages) Width() uint32           { return p.width }
func (p *PackedImages) Height() uint32          { return p.height }
func (p *PackedImages) Entries() []PackedEntry  { return p.entries }
func (p *PackedImages) Entry(i int) PackedEntry { return p.entries[i] }

// FaceOffset is where image i starts assuming every image has the same size.
func (p *PackedImages) FaceOffset(i int) int {
	if len(p.entries) == 0 {
		return 0
	}
	return len(p.data) / len(p.entries) * i
}

// Face returns image i using the equal size assumption of FaceOffset.
func (p *PackedImages) Face(i int) []byte {
	if len(p.entries) == 0 {
		return nil
	}
	start := p.FaceOffset(i)
	return p.data[start : start+len(p.data)/len(p.entries)]
}

// LoadPackedImages decodes paths in order and packs them. Images whose size
// differs from the previous one are accepted with a warning.
func LoadPackedImages(paths []string, capacity int, logs *Logs) (*PackedImages, error) {
	packed := NewPackedImages(capacity)
	for i, path := range paths {
		width, height, pixels, err := DecodeRGBA(path)
		if err != nil {
			return nil, logs.failure(KindFatal, "decode image", path, err)
		}
		if i > 0 && (width != packed.Width() || height != packed.Height()) {
			logs.Warn.Printf("%s is %dx%d, previous images are %dx%d", path, width, height, packed.Width(), packed.Height())
		}
		if err := packed.Add(width, height, pixels); err != nil {
			return nil, logs.failure(KindFatal, "pack image", path, err)
		}
	}
	return packed, nil
}
