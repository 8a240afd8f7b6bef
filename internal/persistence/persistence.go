// Package persistence saves and loads an index and its metadata as a matched pair.
//
// The index file is little-endian binary:
//
//	magic "SSVI" | version u32 | build id [16] | dimension u32 | ntotal u64 |
//	ntotal*dimension float32 | crc32 (IEEE) of all preceding bytes
//
// The metadata file is JSON carrying the same build id plus the records.
// Load rejects files whose build ids differ.
package persistence

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"semsearch/internal/domain"
	"semsearch/internal/metadata"
	"semsearch/internal/vectorindex"
)

const (
	IndexFile    = "index.bin"
	MetadataFile = "metadata.json"

	formatVersion = 1
	headerSize    = 4 + 4 + 16 + 4 + 8
	trailerSize   = 4
)

var magic = [4]byte{'S', 'S', 'V', 'I'}

// Paths locates the two artifacts.
type Paths struct {
	Index    string
	Metadata string
}

// InDir returns the default artifact paths inside dir.
func InDir(dir string) Paths {
	return Paths{Index: filepath.Join(dir, IndexFile), Metadata: filepath.Join(dir, MetadataFile)}
}

// Manifest describes a saved pair.
type Manifest struct {
	BuildID   uuid.UUID `json:"build_id"`
	Embedder  string    `json:"embedder"`
	Dimension int       `json:"dimension"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
	Sources   []string  `json:"sources,omitempty"`
	Summary   string    `json:"summary,omitempty"`
}

type metadataFile struct {
	Manifest
	Records []domain.MetadataRecord `json:"records"`
}

// Save writes idx and store to p. Both files are written to temporaries
// and renamed into place; on failure nothing usable is left behind and the
// error wraps domain.ErrIO. Descriptive fields of info are kept; build id,
// timestamp and shape are filled in on the returned manifest.
func Save(p Paths, idx *vectorindex.Index, store *metadata.Store, info Manifest) (Manifest, error) {
	records := store.Records()
	m := info
	m.BuildID = uuid.New()
	m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	m.Rows = len(records)

	var indexTmp, metaTmp string
	cleanup := func() {
		for _, f := range []string{indexTmp, metaTmp} {
			if f != "" {
				_ = os.Remove(f)
			}
		}
	}

	err := idx.Raw(func(dim int, data []float32) error {
		if err := metadata.CheckAligned(len(data)/max(dim, 1), len(records)); err != nil {
			return err
		}
		m.Dimension = dim
		var err error
		indexTmp, err = writeTemp(p.Index, func(w io.Writer) error { return encodeIndex(w, m.BuildID, dim, data) })
		return err
	})
	if err != nil {
		cleanup()
		return Manifest{}, wrapIO("write index", err)
	}
	metaTmp, err = writeTemp(p.Metadata, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metadataFile{Manifest: m, Records: records})
	})
	if err != nil {
		cleanup()
		return Manifest{}, wrapIO("write metadata", err)
	}

	if err := os.Rename(indexTmp, p.Index); err != nil {
		cleanup()
		return Manifest{}, wrapIO("install index", err)
	}
	indexTmp = ""
	if err := os.Rename(metaTmp, p.Metadata); err != nil {
		// The new index must not pair with an older metadata file.
		_ = os.Remove(p.Index)
		cleanup()
		return Manifest{}, wrapIO("install metadata", err)
	}
	return m, nil
}

// Load reads the pair at p. Missing files wrap domain.ErrInputNotFound,
// read failures domain.ErrIO, and malformed or mismatched files
// domain.ErrCorruptIndex.
func Load(p Paths) (*vectorindex.Index, *metadata.Store, Manifest, error) {
	for _, f := range []string{p.Index, p.Metadata} {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil, Manifest{}, fmt.Errorf("%s: %w", f, domain.ErrInputNotFound)
			}
			return nil, nil, Manifest{}, wrapIO("stat "+f, err)
		}
	}

	raw, err := os.ReadFile(p.Index)
	if err != nil {
		return nil, nil, Manifest{}, wrapIO("read index", err)
	}
	buildID, dim, data, err := decodeIndex(raw)
	if err != nil {
		return nil, nil, Manifest{}, fmt.Errorf("%s: %w", p.Index, err)
	}

	f, err := os.Open(p.Metadata)
	if err != nil {
		return nil, nil, Manifest{}, wrapIO("open metadata", err)
	}
	defer f.Close()
	var mf metadataFile
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&mf); err != nil {
		return nil, nil, Manifest{}, fmt.Errorf("%s: decode: %v: %w", p.Metadata, err, domain.ErrCorruptIndex)
	}
	if mf.BuildID != buildID {
		return nil, nil, Manifest{}, fmt.Errorf("index build %s does not match metadata build %s: %w", buildID, mf.BuildID, domain.ErrCorruptIndex)
	}

	idx, err := vectorindex.FromRaw(dim, data)
	if err != nil {
		return nil, nil, Manifest{}, err
	}
	if err := metadata.CheckAligned(idx.NTotal(), len(mf.Records)); err != nil {
		return nil, nil, Manifest{}, err
	}
	m := mf.Manifest
	m.Dimension = dim
	m.Rows = len(mf.Records)
	return idx, metadata.FromRecords(mf.Records), m, nil
}

func encodeIndex(w io.Writer, buildID uuid.UUID, dim int, data []float32) error {
	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(w, crc))

	var header [headerSize]byte
	copy(header[0:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	copy(header[8:24], buildID[:])
	binary.LittleEndian.PutUint32(header[24:28], uint32(dim))
	rows := 0
	if dim > 0 {
		rows = len(data) / dim
	}
	binary.LittleEndian.PutUint64(header[28:36], uint64(rows))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	var buf [4]byte
	for _, f := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[:], crc.Sum32())
	_, err := w.Write(buf[:])
	return err
}

func decodeIndex(raw []byte) (uuid.UUID, int, []float32, error) {
	corrupt := func(format string, args ...any) (uuid.UUID, int, []float32, error) {
		return uuid.Nil, 0, nil, fmt.Errorf(format+": %w", append(args, domain.ErrCorruptIndex)...)
	}
	if len(raw) < headerSize+trailerSize {
		return corrupt("index file too short (%d bytes)", len(raw))
	}
	if [4]byte(raw[0:4]) != magic {
		return corrupt("bad magic %q", raw[0:4])
	}
	if v := binary.LittleEndian.Uint32(raw[4:8]); v != formatVersion {
		return corrupt("unsupported format version %d", v)
	}
	body := raw[:len(raw)-trailerSize]
	if want, got := binary.LittleEndian.Uint32(raw[len(raw)-trailerSize:]), crc32.ChecksumIEEE(body); want != got {
		return corrupt("checksum mismatch")
	}

	buildID := uuid.UUID(raw[8:24])
	dim := binary.LittleEndian.Uint32(raw[24:28])
	rows := binary.LittleEndian.Uint64(raw[28:36])
	floats := uint64(len(body)-headerSize) / 4
	if uint64(len(body)-headerSize)%4 != 0 || rows*uint64(dim) != floats || (dim == 0 && rows != 0) {
		return corrupt("header declares %d rows of %d but file holds %d floats", rows, dim, floats)
	}

	data := make([]float32, floats)
	for i := range data {
		off := headerSize + 4*i
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[off : off+4]))
	}
	return buildID, int(dim), data, nil
}

// writeTemp writes a sibling temporary of target via fn and syncs it.
func writeTemp(target string, fn func(io.Writer) error) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

func wrapIO(op string, err error) error {
	if errors.Is(err, domain.ErrCorruptIndex) || errors.Is(err, domain.ErrIO) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrIO, err)
}
