package ico

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

const iconType = 1

// Entry describes one image embedded in an ICO container.
type Entry struct {
	Width    int    // pixels; a stored 0 means 256
	Height   int    // pixels; a stored 0 means 256
	Colors   int    // palette size, 0 for true color
	Planes   int    // color planes
	BitCount int    // bits per pixel
	Bytes    uint32 // size of the image data
	Offset   uint32 // position of the image data from the start of the file
}

// Size returns the entry's dimensions.
func (e Entry) Size() Size {
	return Size{Width: e.Width, Height: e.Height}
}

type iconDir struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type iconDirEntry struct {
	Width    uint8
	Height   uint8
	Colors   uint8
	Reserved uint8
	Planes   uint16
	BitCount uint16
	Bytes    uint32
	Offset   uint32
}

// ReadDirectory reads the ICONDIR header and entries from r. Image data is
// not read or validated.
func ReadDirectory(r io.Reader) ([]Entry, error) {
	var dir iconDir
	if err := binary.Read(r, binary.LittleEndian, &dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "read icon header")
	}
	if dir.Reserved != 0 || dir.Type != iconType {
		return nil, errors.New(errors.ErrCodeDecode, "not an icon file (reserved=%d type=%d)", dir.Reserved, dir.Type)
	}

	raw := make([]iconDirEntry, dir.Count)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "read icon directory")
	}

	entries := make([]Entry, len(raw))
	for i, e := range raw {
		entries[i] = Entry{
			Width:    dimension(e.Width),
			Height:   dimension(e.Height),
			Colors:   int(e.Colors),
			Planes:   int(e.Planes),
			BitCount: int(e.BitCount),
			Bytes:    e.Bytes,
			Offset:   e.Offset,
		}
	}
	return entries, nil
}

// ReadFile reads the directory of the icon file at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open icon %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "open icon %s", path)
	}
	defer f.Close()
	return ReadDirectory(f)
}

func dimension(b uint8) int {
	if b == 0 {
		return MaxSize
	}
	return int(b)
}
