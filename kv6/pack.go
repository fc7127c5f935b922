package kv6

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

func (c PackCompression) String() string {
	switch c {
	case PackCompNone:
		return "none"
	case PackCompZlib:
		return "zlib"
	case PackCompZstd:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParsePackCompression maps "none", "zlib" or "zstd" to a PackCompression.
func ParsePackCompression(s string) (PackCompression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PackCompNone, nil
	case "zlib":
		return PackCompZlib, nil
	case "zstd":
		return PackCompZstd, nil
	}
	return 0, fmt.Errorf("unknown pack compression %q", s)
}

// PackLayout specifies how the content section stores entries.
type PackLayout uint8

const (
	// LayoutRaw stores entries as independent blobs.
	LayoutRaw PackLayout = 0
	// LayoutCDC stores a content-defined chunk dictionary and entries as sequences of chunk refs.
	LayoutCDC PackLayout = 1
)

func (l PackLayout) String() string {
	switch l {
	case LayoutRaw:
		return "raw"
	case LayoutCDC:
		return "cdc"
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// ParsePackLayout maps "raw" or "cdc" to a PackLayout.
func ParsePackLayout(s string) (PackLayout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return LayoutRaw, nil
	case "cdc":
		return LayoutCDC, nil
	}
	return 0, fmt.Errorf("unknown pack layout %q", s)
}

const (
	packMagicStr = "KV6SPACK"
	packVersion  = 1

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384
)

// maxPackContent bounds the decompressed content section of a pack.
var maxPackContent int64 = 1 << 30

// PackEntry is one complete .kv6 file inside a pack.
type PackEntry struct {
	Name string
	Data []byte
}

// Pack bundles several KV6 sprites into a single file.
type Pack struct {
	Entries []PackEntry
}

// Marshal encodes the pack with the raw layout.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	return p.MarshalEx(LayoutRaw, comp)
}

// MarshalEx encodes the pack with the given layout and compression.
// Every entry must carry a valid KV6 header and a unique name.
func (p *Pack) MarshalEx(layout PackLayout, comp PackCompression) ([]byte, error) {
	seen := make(map[string]struct{}, len(p.Entries))
	for _, e := range p.Entries {
		if len(e.Name) > math.MaxUint16 {
			return nil, newError(KindInvalidPack, -1, "entry name too long: %.32s...", e.Name)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, newError(KindInvalidPack, -1, "duplicate entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if _, err := ParseHeader(e.Data); err != nil {
			return nil, &Error{Kind: KindInvalidPack, Offset: -1, Detail: fmt.Sprintf("entry %q", e.Name), Cause: err}
		}
	}

	content := newWriter(1024)
	content.u8(uint8(layout))
	switch layout {
	case LayoutRaw:
		content.u32(uint32(len(p.Entries)))
		for _, e := range p.Entries {
			writeName(content, e.Name)
			content.u64(xxhash.Sum64(e.Data))
			content.u32(uint32(len(e.Data)))
			content.raw(e.Data)
		}
	case LayoutCDC:
		content.u32(cdcTarget)
		content.u32(cdcMin)
		content.u32(cdcMax)
		dict, sequences := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
		content.u32(uint32(len(dict)))
		for _, blk := range dict {
			content.u32(uint32(len(blk)))
			content.raw(blk)
		}
		content.u32(uint32(len(p.Entries)))
		for i, e := range p.Entries {
			writeName(content, e.Name)
			content.u64(xxhash.Sum64(e.Data))
			content.u32(uint32(len(e.Data)))
			seq := sequences[i]
			content.u32(uint32(len(seq)))
			for _, idx := range seq {
				content.u32(uint32(idx))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported pack layout: %d", layout)
	}

	var final []byte
	switch comp {
	case PackCompNone:
		final = content.bytes()
	case PackCompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(content.bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		final = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		final = enc.EncodeAll(content.bytes(), nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unsupported pack compression: %d", comp)
	}

	out := newWriter(len(packMagicStr) + 2 + len(final))
	out.raw([]byte(packMagicStr))
	out.u8(packVersion)
	out.u8(uint8(comp))
	out.raw(final)
	Logger().Debug("kv6 pack marshaled",
		zap.Int("entries", len(p.Entries)),
		zap.Stringer("layout", layout),
		zap.Stringer("compression", comp),
		zap.Int("raw_bytes", content.offset()),
		zap.Int("bytes", out.offset()))
	return out.bytes(), nil
}

func writeName(w *writer, name string) {
	w.u16(uint16(len(name)))
	w.raw([]byte(name))
}

func readName(r *reader) (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalPack parses a pack and returns it with the compression it used.
// Entry checksums are verified.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagicStr)+2 || string(data[:len(packMagicStr)]) != packMagicStr {
		return nil, 0, newError(KindInvalidPack, 0, "not a kv6 pack")
	}
	version := data[len(packMagicStr)]
	if version != packVersion {
		return nil, 0, newError(KindInvalidPack, len(packMagicStr), "unsupported pack version %d", version)
	}
	comp := PackCompression(data[len(packMagicStr)+1])
	contentBytes := data[len(packMagicStr)+2:]
	switch comp {
	case PackCompNone:
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(contentBytes))
		if err != nil {
			return nil, 0, &Error{Kind: KindInvalidPack, Offset: -1, Detail: "zlib", Cause: err}
		}
		defer zr.Close()
		b, err := io.ReadAll(io.LimitReader(zr, maxPackContent+1))
		if err != nil {
			return nil, 0, &Error{Kind: KindInvalidPack, Offset: -1, Detail: "zlib", Cause: err}
		}
		if int64(len(b)) > maxPackContent {
			return nil, 0, newError(KindInvalidPack, -1, "zlib content exceeds %d bytes", maxPackContent)
		}
		contentBytes = b
	case PackCompZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxPackContent)))
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		b, err := dec.DecodeAll(contentBytes, nil)
		if err != nil {
			return nil, 0, &Error{Kind: KindInvalidPack, Offset: -1, Detail: "zstd", Cause: err}
		}
		if int64(len(b)) > maxPackContent {
			return nil, 0, newError(KindInvalidPack, -1, "zstd content exceeds %d bytes", maxPackContent)
		}
		contentBytes = b
	default:
		return nil, 0, newError(KindInvalidPack, len(packMagicStr)+1, "unsupported compression %d", comp)
	}

	r := newReader(contentBytes)
	lb, err := r.u8()
	if err != nil {
		return nil, 0, err
	}
	var pack *Pack
	switch PackLayout(lb) {
	case LayoutRaw:
		pack, err = readRawEntries(r)
	case LayoutCDC:
		pack, err = readCDCEntries(r)
	default:
		err = newError(KindInvalidPack, 0, "unknown layout %d", lb)
	}
	if err != nil {
		return nil, 0, err
	}
	return pack, comp, nil
}

func readRawEntries(r *reader) (*Pack, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	// each entry needs at least name length + checksum + data length
	if err := r.need(uint64(n) * 14); err != nil {
		return nil, err
	}
	pack := &Pack{Entries: make([]PackEntry, n)}
	for i := range pack.Entries {
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		sum, err := r.u64()
		if err != nil {
			return nil, err
		}
		size, err := r.u32()
		if err != nil {
			return nil, err
		}
		b, err := r.take(int(size))
		if err != nil {
			return nil, err
		}
		if err := verifyEntry(name, b, sum); err != nil {
			return nil, err
		}
		pack.Entries[i] = PackEntry{Name: name, Data: append([]byte(nil), b...)}
	}
	return pack, nil
}

func readCDCEntries(r *reader) (*Pack, error) {
	// chunking parameters are informational on read
	if _, err := r.take(12); err != nil {
		return nil, err
	}
	nBlocks, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.need(uint64(nBlocks) * 4); err != nil {
		return nil, err
	}
	blocks := make([][]byte, nBlocks)
	var maxBlock uint64
	for i := range blocks {
		blen, err := r.u32()
		if err != nil {
			return nil, err
		}
		if blocks[i], err = r.take(int(blen)); err != nil {
			return nil, err
		}
		maxBlock = max(maxBlock, uint64(blen))
	}
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.need(uint64(n) * 18); err != nil {
		return nil, err
	}
	pack := &Pack{Entries: make([]PackEntry, n)}
	for i := range pack.Entries {
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		sum, err := r.u64()
		if err != nil {
			return nil, err
		}
		rawLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		seqLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		if err := r.need(uint64(seqLen) * 4); err != nil {
			return nil, err
		}
		// rawLen is untrusted: never reserve more than the refs can produce.
		if int64(rawLen) > maxPackContent || uint64(rawLen) > uint64(seqLen)*maxBlock {
			return nil, newError(KindInvalidPack, -1, "entry %q: %d refs cannot rebuild %d bytes", name, seqLen, rawLen)
		}
		payload := make([]byte, 0, rawLen)
		for j := uint32(0); j < seqLen; j++ {
			at := r.offset()
			idx, err := r.u32()
			if err != nil {
				return nil, err
			}
			if idx >= nBlocks {
				return nil, newError(KindInvalidPack, at, "entry %q: block ref %d out of range (%d blocks)", name, idx, nBlocks)
			}
			if uint64(len(payload))+uint64(len(blocks[idx])) > uint64(rawLen) {
				return nil, newError(KindInvalidPack, at, "entry %q: chunk sequence longer than %d bytes", name, rawLen)
			}
			payload = append(payload, blocks[idx]...)
		}
		if uint32(len(payload)) != rawLen {
			return nil, newError(KindInvalidPack, -1, "entry %q: rebuilt %d bytes, want %d", name, len(payload), rawLen)
		}
		if err := verifyEntry(name, payload, sum); err != nil {
			return nil, err
		}
		pack.Entries[i] = PackEntry{Name: name, Data: payload}
	}
	return pack, nil
}

func verifyEntry(name string, b []byte, sum uint64) error {
	if got := xxhash.Sum64(b); got != sum {
		return newError(KindChecksumMismatch, -1, "entry %q: xxhash %016x, want %016x", name, got, sum)
	}
	return nil
}

// buildCDCIndex performs content-defined chunking over all entry payloads,
// building a dictionary of unique chunks and returning for each entry the
// sequence of chunk indices. Sprites that share voxel runs share chunks.
func buildCDCIndex(entries []PackEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	// Gear table derived deterministically from xxhash.
	gear := make([]uint64, 256)
	seed := xxhash.Sum64([]byte("kv6-cdc-gear-seed"))
	for i := range gear {
		var b [16]byte
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}

	blocks := make([][]byte, 0, 256)
	index := make(map[uint64][]int, 1024)
	seqs := make([][]int, len(entries))

	pow := 1 << int(math.Round(math.Log2(float64(target))))
	mask := uint64(pow - 1)

	addBlock := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = append(index[h], idx)
		return idx
	}

	for i, e := range entries {
		data := e.Data
		var seq []int
		start := 0
		var h uint64
		for pos := 0; pos < len(data); pos++ {
			h = h<<1 + gear[data[pos]]
			if pos-start+1 < minSz {
				continue
			}
			if h&mask == 0 || pos-start+1 >= maxSz {
				seq = append(seq, addBlock(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seq = append(seq, addBlock(data[start:]))
		}
		seqs[i] = seq
	}
	return blocks, seqs
}
