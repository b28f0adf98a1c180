// Package rgbimage is an unclamped floating-point RGB frame buffer plus its
// on-disk format and PNG tone-mapping.
package rgbimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"glint/vmath/vec3"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const dataLayoutVersion = 1

// Limits on what ReadRGBImage will allocate for a header and a frame.
const (
	maxHeaderLength = 1 << 16
	maxPixels       = 1 << 26
)

type RGBImage struct {
	RowSize, ColSize int

	// Three channels per pixel, row-major.
	Pixels []float32
}

func New(rowSize, colSize int) *RGBImage {
	im := &RGBImage{}
	im.Resize(rowSize, colSize)
	return im
}

func (im *RGBImage) Resize(rowSize, colSize int) {
	im.RowSize = rowSize
	im.ColSize = colSize
	im.Pixels = make([]float32, rowSize*colSize*3)
}

func (im *RGBImage) Set(r, c int, v vec3.T) {
	idx := (r*im.ColSize + c) * 3
	im.Pixels[idx+0] = float32(v[0])
	im.Pixels[idx+1] = float32(v[1])
	im.Pixels[idx+2] = float32(v[2])
}

func (im *RGBImage) At(r, c int) vec3.T {
	idx := (r*im.ColSize + c) * 3
	return vec3.T{
		float64(im.Pixels[idx+0]),
		float64(im.Pixels[idx+1]),
		float64(im.Pixels[idx+2]),
	}
}

// ToNRGBA clamps every channel to [0, 1] and quantizes to 8 bits.
func (im *RGBImage) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.ColSize, im.RowSize))
	for r := 0; r < im.RowSize; r++ {
		for c := 0; c < im.ColSize; c++ {
			v := im.At(r, c)
			out.SetNRGBA(c, r, color.NRGBA{
				R: quantize(v[0]),
				G: quantize(v[1]),
				B: quantize(v[2]),
				A: 255,
			})
		}
	}
	return out
}

func quantize(x float64) uint8 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(math.Round(x * 255))
}

func WritePNG(im *RGBImage, w io.Writer) error {
	if err := png.Encode(w, im.ToNRGBA()); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}

func ReadRGBImage(in io.Reader) (*RGBImage, error) {
	// Read header length.
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}

	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d exceeds limit %d", headerLength, maxHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	fields := hdr.GetFields()
	if v := fields["data_layout_version"].GetNumberValue(); v != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", v)
	}

	rows := fields["row_size"].GetNumberValue()
	cols := fields["col_size"].GetNumberValue()
	if rows < 0 || cols < 0 || rows != math.Trunc(rows) || cols != math.Trunc(cols) {
		return nil, fmt.Errorf("bad dimensions in header: %vx%v", rows, cols)
	}
	if rows > maxPixels || cols > maxPixels || rows*cols > maxPixels {
		return nil, fmt.Errorf("frame of %vx%v exceeds limit of %d pixels", rows, cols, maxPixels)
	}

	im := New(int(rows), int(cols))

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.Pixels); err != nil {
		return nil, fmt.Errorf("while reading pixels: %w", err)
	}

	return im, nil
}

func WriteRGBImage(im *RGBImage, w io.Writer) error {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"row_size":            im.RowSize,
		"col_size":            im.ColSize,
		"data_layout_version": dataLayoutVersion,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Pixels); err != nil {
		return fmt.Errorf("while writing pixels: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}
