package database

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the container a database file is written in.
type Compression uint8

const (
	// CompressionNone writes the plain database.
	CompressionNone Compression = 0
	// CompressionLZ4 favors load speed.
	CompressionLZ4 Compression = 1
	// CompressionZstd favors size.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Container format: [magic 4][algorithm u8][reserved 3][raw size u64][payload size u64][payload].
const containerHeaderSize = 24

const maxPrealloc = 1 << 30

var containerMagic = [4]byte{'L', 'I', 'D', 'Z'}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	// DecodeAll never grows dst past its capacity, so the header size bounds the output
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPrealloc), zstd.WithDecodeAllCapLimit(true))
	return dec
}

// IsCompressed reports whether data starts with a compressed container.
func IsCompressed(data []byte) bool {
	return len(data) >= len(containerMagic) && bytes.Equal(data[:len(containerMagic)], containerMagic[:])
}

// Compress wraps a serialized database in a container.
func Compress(data []byte, c Compression) ([]byte, error) {
	var payload []byte
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	case CompressionLZ4:
		payload = make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, payload, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// incompressible; keep the raw bytes
			return data, nil
		}
		payload = payload[:n]
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrCompression, c)
	}

	out := make([]byte, containerHeaderSize, containerHeaderSize+len(payload))
	copy(out, containerMagic[:])
	out[4] = byte(c)
	binary.BigEndian.PutUint64(out[8:], uint64(len(data)))
	binary.BigEndian.PutUint64(out[16:], uint64(len(payload)))
	return append(out, payload...), nil
}

// Decompress unwraps a container written by Compress.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < containerHeaderSize || !IsCompressed(data) {
		return nil, fmt.Errorf("%w: header", ErrCompression)
	}
	algo := Compression(data[4])
	rawSize := binary.BigEndian.Uint64(data[8:])
	payloadSize := binary.BigEndian.Uint64(data[16:])
	if uint64(len(data)-containerHeaderSize) < payloadSize {
		return nil, fmt.Errorf("%w: payload truncated", ErrCompression)
	}
	payload := data[containerHeaderSize : containerHeaderSize+payloadSize]

	var (
		raw []byte
		err error
	)
	switch algo {
	case CompressionZstd:
		if rawSize > maxPrealloc {
			return nil, fmt.Errorf("%w: implausible size %d", ErrCompression, rawSize)
		}
		dec := getZstdDecoder()
		raw, err = dec.DecodeAll(payload, make([]byte, 0, rawSize))
		zstdDecoderPool.Put(dec)
	case CompressionLZ4:
		if rawSize > payloadSize*255+16 {
			return nil, fmt.Errorf("%w: implausible size %d", ErrCompression, rawSize)
		}
		raw = make([]byte, rawSize)
		var n int
		n, err = lz4.UncompressBlock(payload, raw)
		if err == nil && uint64(n) != rawSize {
			err = fmt.Errorf("decoded %d bytes, want %d", n, rawSize)
		}
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrCompression, algo)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompression, algo, err)
	}
	if uint64(len(raw)) != rawSize {
		return nil, fmt.Errorf("%w: size mismatch", ErrCompression)
	}
	return raw, nil
}
