// Package cramblock implements a minimal CRAM-style block container: a
// small header (content type, content ID, compression method, raw and
// compressed sizes) in front of an opaque payload. It is the "external
// collaborator" spec.md describes — it routes a payload to one of several
// compression methods and never inspects an rANS-compressed payload's
// contents, treating pkg/codec's frames as opaque bytes.
package cramblock

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/biohpc/cram-rans/pkg/codec"
	"github.com/biohpc/cram-rans/pkg/itf8"
)

// Method identifies how a block's Data was produced from its raw bytes.
type Method byte

const (
	MethodRaw      Method = 0 // stored, no compression
	MethodGzip     Method = 1 // stdlib compress/gzip, mirrors cram_io.h's zlib glue
	MethodExternal Method = 2 // klauspost/compress/zstd, a faster general-purpose fallback
	MethodRANS0    Method = 3 // pkg/codec order-0
	MethodRANS1    Method = 4 // pkg/codec order-1
)

func (m Method) String() string {
	switch m {
	case MethodRaw:
		return "raw"
	case MethodGzip:
		return "gzip"
	case MethodExternal:
		return "external"
	case MethodRANS0:
		return "rans0"
	case MethodRANS1:
		return "rans1"
	default:
		return "unknown"
	}
}

// Content type codes, a small subset of CRAM's actual registry, enough to
// distinguish the streams this repository produces.
type ContentType byte

const (
	ContentFileHeader  ContentType = 0
	ContentBaseCalls   ContentType = 1
	ContentQualities   ContentType = 2
	ContentReadNames   ContentType = 3
	ContentExternalRaw ContentType = 4
)

var (
	// ErrTruncated is returned when a block's declared sizes run past the
	// bytes actually available.
	ErrTruncated = errors.New("cramblock: truncated block")
	// ErrUnknownMethod is returned when a block's method byte isn't one
	// cramblock knows how to decompress.
	ErrUnknownMethod = errors.New("cramblock: unknown compression method")
)

// Block is one CRAM-style container: a typed, identified, compressed
// chunk of data.
type Block struct {
	ContentType ContentType
	ContentID   int32
	Method      Method
	RawSize     int32
	Data        []byte // compressed bytes, per Method
}

// NewBlock compresses raw using method and wraps the result as a Block.
func NewBlock(contentType ContentType, contentID int32, method Method, raw []byte) (*Block, error) {
	data, err := compress(method, raw)
	if err != nil {
		return nil, err
	}
	return &Block{
		ContentType: contentType,
		ContentID:   contentID,
		Method:      method,
		RawSize:     int32(len(raw)),
		Data:        data,
	}, nil
}

func compress(method Method, raw []byte) ([]byte, error) {
	switch method {
	case MethodRaw:
		return raw, nil
	case MethodGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case MethodExternal:
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case MethodRANS0:
		return codec.Compress(raw, codec.OrderZero), nil
	case MethodRANS1:
		return codec.Compress(raw, codec.OrderOne), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, method)
	}
}

// Decode returns the block's decompressed payload.
func (b *Block) Decode() ([]byte, error) {
	switch b.Method {
	case MethodRaw:
		return b.Data, nil
	case MethodGzip:
		r, err := gzip.NewReader(bytes.NewReader(b.Data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case MethodExternal:
		r, err := zstd.NewReader(bytes.NewReader(b.Data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case MethodRANS0, MethodRANS1:
		return codec.Decompress(b.Data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, b.Method)
	}
}

// Marshal serializes the block header (content type, content ID as
// ITF-8, method, raw size as ITF-8, compressed size as ITF-8) followed by
// Data, mirroring cram_io.h's block layout closely enough for this
// repository's own round trip without claiming full CRAM compatibility.
func (b *Block) Marshal() []byte {
	out := make([]byte, 0, len(b.Data)+16)
	out = append(out, byte(b.ContentType))
	out = append(out, itf8.Encode(b.ContentID)...)
	out = append(out, byte(b.Method))
	out = append(out, itf8.Encode(b.RawSize)...)
	out = append(out, itf8.Encode(int32(len(b.Data)))...)
	out = append(out, b.Data...)
	return out
}

// Unmarshal parses a block written by Marshal, returning the block and
// the number of bytes consumed.
func Unmarshal(data []byte) (*Block, int, error) {
	if len(data) < 1 {
		return nil, 0, ErrTruncated
	}
	pos := 0
	contentType := ContentType(data[pos])
	pos++

	contentID, n, err := itf8.Decode(data[pos:])
	if err != nil {
		return nil, 0, err
	}
	pos += n

	if pos >= len(data) {
		return nil, 0, ErrTruncated
	}
	method := Method(data[pos])
	pos++

	rawSize, n, err := itf8.Decode(data[pos:])
	if err != nil {
		return nil, 0, err
	}
	pos += n

	compSize, n, err := itf8.Decode(data[pos:])
	if err != nil {
		return nil, 0, err
	}
	pos += n

	if compSize < 0 || pos+int(compSize) > len(data) {
		return nil, 0, ErrTruncated
	}

	block := &Block{
		ContentType: contentType,
		ContentID:   contentID,
		Method:      method,
		RawSize:     rawSize,
		Data:        data[pos : pos+int(compSize)],
	}
	return block, pos + int(compSize), nil
}
