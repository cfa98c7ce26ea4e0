// Package serialization turns checkpoints and state snapshots into
// storable bytes. The pipeline is codec, then optional compression, then
// optional AES-GCM encryption; deserialization runs it in reverse.
package serialization

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrInvalidKeySize     = errors.New("encryption key must be 16, 24 or 32 bytes")
	ErrCiphertextTooShort = errors.New("ciphertext shorter than nonce")
)

// Codec encodes values to bytes and back.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (jsonCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                    { return "json" }

type msgpackCodec struct{}

func (msgpackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (msgpackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (msgpackCodec) Name() string                    { return "msgpack" }

// JSON returns the JSON codec. Use it when payloads must stay readable
// in the store.
func JSON() Codec { return jsonCodec{} }

// Msgpack returns the MessagePack codec, the default for adapters.
func Msgpack() Codec { return msgpackCodec{} }

// Compression selects the compression layer.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Serializer runs the full encode pipeline. The zero value is not
// usable; construct with New or Default.
type Serializer struct {
	codec       Codec
	compression Compression
	key         []byte
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithCodec overrides the codec.
func WithCodec(c Codec) Option {
	return func(s *Serializer) { s.codec = c }
}

// WithCompression selects the compression layer.
func WithCompression(c Compression) Option {
	return func(s *Serializer) { s.compression = c }
}

// WithEncryptionKey enables AES-GCM encryption. The key length selects
// AES-128, AES-192 or AES-256.
func WithEncryptionKey(key []byte) Option {
	return func(s *Serializer) { s.key = key }
}

// New builds a serializer. Defaults: msgpack codec, no compression, no
// encryption.
func New(opts ...Option) (*Serializer, error) {
	s := &Serializer{codec: Msgpack(), compression: CompressionNone}
	for _, opt := range opts {
		opt(s)
	}
	switch len(s.key) {
	case 0, 16, 24, 32:
	default:
		return nil, ErrInvalidKeySize
	}
	return s, nil
}

// Default returns the serializer the storage adapters use when none is
// supplied: msgpack with zstd compression.
func Default() *Serializer {
	s, _ := New(WithCompression(CompressionZstd))
	return s
}

// Marshal encodes, then compresses, then encrypts.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode (%s): %w", s.codec.Name(), err)
	}
	if data, err = s.compress(data); err != nil {
		return nil, fmt.Errorf("compress (%s): %w", s.compression, err)
	}
	if len(s.key) > 0 {
		if data, err = s.encrypt(data); err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
	}
	return data, nil
}

// Unmarshal reverses Marshal into v.
func (s *Serializer) Unmarshal(data []byte, v any) error {
	var err error
	if len(s.key) > 0 {
		if data, err = s.decrypt(data); err != nil {
			return fmt.Errorf("decrypt: %w", err)
		}
	}
	if data, err = s.decompress(data); err != nil {
		return fmt.Errorf("decompress (%s): %w", s.compression, err)
	}
	if err = s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode (%s): %w", s.codec.Name(), err)
	}
	return nil
}

func (s *Serializer) compress(data []byte) ([]byte, error) {
	switch s.compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (s *Serializer) decompress(data []byte) ([]byte, error) {
	switch s.compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

func (s *Serializer) encrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (s *Serializer) decrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
