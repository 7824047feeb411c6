package pnnx

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/x448/float16"
)

// Weight container format constants.
const (
	WeightMagic   = "GRWB"
	WeightVersion = 1
	DataAlignment = 64 // Align tensor data to 64 bytes.
)

// Storage type codes for container entries.
const (
	StorageFloat32 uint8 = 0
	StorageFloat16 uint8 = 1
)

// WeightEntry is one named tensor in a weight container. Data is always
// little-endian float32 after loading; float16 storage is widened on read.
type WeightEntry struct {
	Name  string
	Shape []int
	Data  []byte
}

// WeightStore holds the decoded contents of a .bin weight container.
type WeightStore struct {
	entries map[string]WeightEntry
	names   []string
}

// Get returns the entry with the given name.
func (s *WeightStore) Get(name string) (WeightEntry, error) {
	e, ok := s.entries[name]
	if !ok {
		return WeightEntry{}, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
	}
	return e, nil
}

// Names returns entry names in file order.
func (s *WeightStore) Names() []string {
	return s.names
}

// Len returns the number of entries.
func (s *WeightStore) Len() int {
	return len(s.entries)
}

// fixed header layout: magic[4] version:u32 count:u32 reserved:u32 checksum[32]
const headerSize = 4 + 4 + 4 + 4 + 32

// ReadWeights reads and verifies a .bin weight container.
//
//nolint:gosec // G304: path comes from trusted caller, not user input.
func ReadWeights(path string) (*WeightStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weight file: %w", err)
	}
	return parseWeights(raw)
}

func parseWeights(raw []byte) (*WeightStore, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: file shorter than header", ErrInvalidMagic)
	}
	if string(raw[:4]) != WeightMagic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, raw[:4])
	}

	version := binary.LittleEndian.Uint32(raw[4:])
	if version != WeightVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}
	count := binary.LittleEndian.Uint32(raw[8:])

	var stored [32]byte
	copy(stored[:], raw[16:48])

	r := bytes.NewReader(raw[headerSize:])
	type tableEntry struct {
		name    string
		storage uint8
		shape   []int
		offset  uint64
		size    uint64
	}

	table := make([]tableEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("entry %d: read name length: %w", i, err)
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBuf); err != nil {
			return nil, fmt.Errorf("entry %d: read name: %w", i, err)
		}

		var storage, ndims uint8
		if err := binary.Read(r, binary.LittleEndian, &storage); err != nil {
			return nil, fmt.Errorf("entry %d: read storage type: %w", i, err)
		}
		if storage != StorageFloat32 && storage != StorageFloat16 {
			return nil, fmt.Errorf("entry %q: unsupported storage type %d", nameBuf, storage)
		}
		if err := binary.Read(r, binary.LittleEndian, &ndims); err != nil {
			return nil, fmt.Errorf("entry %d: read rank: %w", i, err)
		}

		shape := make([]int, ndims)
		for d := range shape {
			var dim uint32
			if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
				return nil, fmt.Errorf("entry %q: read dimension: %w", nameBuf, err)
			}
			shape[d] = int(dim)
		}

		var offset, size uint64
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return nil, fmt.Errorf("entry %q: read offset: %w", nameBuf, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("entry %q: read size: %w", nameBuf, err)
		}
		table = append(table, tableEntry{
			name:    string(nameBuf),
			storage: storage,
			shape:   shape,
			offset:  offset,
			size:    size,
		})
	}

	tableEnd := len(raw) - r.Len()
	dataStart := alignOffset(tableEnd, DataAlignment)
	if dataStart > len(raw) {
		dataStart = len(raw)
	}
	data := raw[dataStart:]

	if sha256.Sum256(data) != stored {
		return nil, ErrChecksumMismatch
	}

	store := &WeightStore{entries: make(map[string]WeightEntry, len(table))}
	for _, te := range table {
		end := te.offset + te.size
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("entry %q: data [%d:%d) extends beyond data section (%d bytes)",
				te.name, te.offset, end, len(data))
		}
		payload := data[te.offset:end]
		if te.storage == StorageFloat16 {
			payload = widenFloat16(payload)
		}
		store.entries[te.name] = WeightEntry{Name: te.name, Shape: te.shape, Data: payload}
		store.names = append(store.names, te.name)
	}
	return store, nil
}

// WriteWeights writes entries into a .bin weight container at path.
// Entries must carry float32 data; storage is float32.
func WriteWeights(path string, entries []WeightEntry) error {
	var data bytes.Buffer
	var table bytes.Buffer

	for _, e := range entries {
		if len(e.Name) > math.MaxUint16 {
			return fmt.Errorf("entry name too long: %d bytes", len(e.Name))
		}
		offset := uint64(data.Len())
		data.Write(e.Data)

		binary.Write(&table, binary.LittleEndian, uint16(len(e.Name))) //nolint:errcheck // bytes.Buffer cannot fail
		table.WriteString(e.Name)
		table.WriteByte(StorageFloat32)
		table.WriteByte(uint8(len(e.Shape)))
		for _, d := range e.Shape {
			binary.Write(&table, binary.LittleEndian, uint32(d)) //nolint:errcheck,gosec // bytes.Buffer cannot fail
		}
		binary.Write(&table, binary.LittleEndian, offset)              //nolint:errcheck // bytes.Buffer cannot fail
		binary.Write(&table, binary.LittleEndian, uint64(len(e.Data))) //nolint:errcheck // bytes.Buffer cannot fail
	}

	checksum := sha256.Sum256(data.Bytes())

	var out bytes.Buffer
	out.WriteString(WeightMagic)
	binary.Write(&out, binary.LittleEndian, uint32(WeightVersion)) //nolint:errcheck // bytes.Buffer cannot fail
	binary.Write(&out, binary.LittleEndian, uint32(len(entries)))  //nolint:errcheck,gosec // bytes.Buffer cannot fail
	binary.Write(&out, binary.LittleEndian, uint32(0))             //nolint:errcheck // reserved
	out.Write(checksum[:])
	out.Write(table.Bytes())

	pad := alignOffset(out.Len(), DataAlignment) - out.Len()
	out.Write(make([]byte, pad))
	out.Write(data.Bytes())

	return os.WriteFile(path, out.Bytes(), 0o644)
}

// widenFloat16 converts little-endian float16 storage to float32 bytes.
func widenFloat16(src []byte) []byte {
	n := len(src) / 2
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		h := float16.Frombits(binary.LittleEndian.Uint16(src[i*2:]))
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(h.Float32()))
	}
	return out
}

// alignOffset rounds offset up to the next multiple of alignment.
func alignOffset(offset, alignment int) int {
	return (offset + alignment - 1) / alignment * alignment
}
