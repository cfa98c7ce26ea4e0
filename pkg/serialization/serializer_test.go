package serialization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/state"
)

func sampleCheckpoint() *checkpoint.Checkpoint {
	return &checkpoint.Checkpoint{
		ID:        "cp-1",
		GraphName: "pipeline",
		RunID:     "run-1",
		Step:      3,
		NextNode:  "summarize",
		State: state.State{
			"messages": []any{"hello", "world"},
			"count":    int8(3),
		},
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSerializerRoundTrip(t *testing.T) {
	configs := map[string][]Option{
		"default":        nil,
		"json":           {WithCodec(JSON())},
		"gzip":           {WithCompression(CompressionGzip)},
		"zstd":           {WithCompression(CompressionZstd)},
		"encrypted":      {WithEncryptionKey(make([]byte, 32))},
		"zstd_encrypted": {WithCompression(CompressionZstd), WithEncryptionKey(make([]byte, 16))},
	}

	for name, opts := range configs {
		t.Run(name, func(t *testing.T) {
			s, err := New(opts...)
			require.NoError(t, err)

			in := sampleCheckpoint()
			data, err := s.Marshal(in)
			require.NoError(t, err)

			var out checkpoint.Checkpoint
			require.NoError(t, s.Unmarshal(data, &out))

			assert.Equal(t, in.ID, out.ID)
			assert.Equal(t, in.Step, out.Step)
			assert.Equal(t, in.NextNode, out.NextNode)
			assert.Len(t, out.State["messages"], 2)
		})
	}
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New(WithEncryptionKey([]byte("short")))
	require.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestUnmarshalRejectsTruncatedCiphertext(t *testing.T) {
	s, err := New(WithEncryptionKey(make([]byte, 32)))
	require.NoError(t, err)
	require.ErrorIs(t, s.Unmarshal([]byte{0x01}, &struct{}{}), ErrCiphertextTooShort)
}

func TestEncryptedPayloadDiffersFromPlain(t *testing.T) {
	plain, err := New()
	require.NoError(t, err)
	sealed, err := New(WithEncryptionKey(make([]byte, 32)))
	require.NoError(t, err)

	in := sampleCheckpoint()
	a, err := plain.Marshal(in)
	require.NoError(t, err)
	b, err := sealed.Marshal(in)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDefaultCompressesLargePayloads(t *testing.T) {
	big := make([]any, 0, 2048)
	for i := 0; i < 2048; i++ {
		big = append(big, "the same line repeated to give the compressor something to bite on")
	}
	cp := sampleCheckpoint()
	cp.State["messages"] = big

	raw, err := New()
	require.NoError(t, err)
	plain, err := raw.Marshal(cp)
	require.NoError(t, err)

	packed, err := Default().Marshal(cp)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain))
}
