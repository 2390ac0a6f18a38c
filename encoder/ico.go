package encoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"sort"

	ico "github.com/sergeymakinen/go-ico"
	xdraw "golang.org/x/image/draw"
)

var DefaultIconSizes = []int{16, 32, 48, 64}

// ICO writes a Windows icon. With no Sizes the source image (at most
// 256x256) is stored as is; otherwise the source is scaled to one PNG
// entry per size.
type ICO struct {
	Sizes []int
}

func (ICO) Format() string { return "ico" }

func (e ICO) Encode(w io.Writer, img image.Image) error {
	if len(e.Sizes) == 0 {
		b := img.Bounds()
		if b.Dx() > 256 || b.Dy() > 256 {
			return fmt.Errorf("icon source %dx%d larger than 256x256", b.Dx(), b.Dy())
		}
		return ico.Encode(w, img)
	}

	sizes := append([]int(nil), e.Sizes...)
	sort.Ints(sizes)
	var entries [][]byte
	for _, size := range sizes {
		if size < 1 || size > 256 {
			return fmt.Errorf("icon size %d out of range 1-256", size)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, Scale(img, size)); err != nil {
			return fmt.Errorf("encoding %dx%d entry: %w", size, size, err)
		}
		entries = append(entries, buf.Bytes())
	}
	return writeICO(w, sizes, entries)
}

// Scale fits img into a size x size transparent square, preserving aspect.
func Scale(src image.Image, size int) *image.NRGBA {
	sb := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	if sb.Dx() == size && sb.Dy() == size {
		xdraw.Draw(dst, dst.Bounds(), src, sb.Min, xdraw.Src)
		return dst
	}
	scale := min(float64(size)/float64(sb.Dx()), float64(size)/float64(sb.Dy()))
	nw := int(float64(sb.Dx())*scale + 0.5)
	nh := int(float64(sb.Dy())*scale + 0.5)
	offX, offY := (size-nw)/2, (size-nh)/2
	xdraw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+nw, offY+nh), src, sb, xdraw.Over, nil)
	return dst
}

// writeICO lays out ICONDIR, one ICONDIRENTRY per image and the PNG payloads.
func writeICO(w io.Writer, sizes []int, entries [][]byte) error {
	const (
		headerSize = 6
		entrySize  = 16
	)
	var buf bytes.Buffer
	le := binary.LittleEndian

	binary.Write(&buf, le, uint16(0)) // reserved
	binary.Write(&buf, le, uint16(1)) // icon
	binary.Write(&buf, le, uint16(len(entries)))

	offset := uint32(headerSize + entrySize*len(entries))
	for i, data := range entries {
		dim := uint8(sizes[i])
		if sizes[i] == 256 {
			dim = 0
		}
		buf.WriteByte(dim)
		buf.WriteByte(dim)
		buf.WriteByte(0) // palette
		buf.WriteByte(0) // reserved
		binary.Write(&buf, le, uint16(1))  // planes
		binary.Write(&buf, le, uint16(32)) // bpp
		binary.Write(&buf, le, uint32(len(data)))
		binary.Write(&buf, le, offset)
		offset += uint32(len(data))
	}
	for _, data := range entries {
		buf.Write(data)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
