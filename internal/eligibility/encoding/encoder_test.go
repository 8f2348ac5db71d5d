package encoding

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"

	"eligibility-workers/internal/common/config"
	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

func TestPackingEncoder_Layout(t *testing.T) {
	attrs := models.NewApplicantAttributes(15, 0x0102, 2, 85, 8, 9)

	p, err := NewPackingEncoder().Encode(attrs)
	require.NoError(t, err)

	assert.Equal(t, config.SchemePacking, p.Scheme)
	assert.Equal(t, []byte{15}, p.Age)
	assert.Equal(t, []byte{0x01, 0x02}, p.Region)
	assert.Equal(t, []byte{2}, p.Income)
	assert.Equal(t, []byte{0x00, 85}, p.Exam)
	assert.Equal(t, []byte{8}, p.Extracurricular)
	assert.Equal(t, []byte{9}, p.Interview)
	assert.Len(t, p.Channels(), 6)
}

func TestPackingEncoder_Deterministic(t *testing.T) {
	attrs := models.NewApplicantAttributes(28, 44, 4, 92, 7, 10)
	enc := NewPackingEncoder()

	a, err := enc.Encode(attrs)
	require.NoError(t, err)
	b, err := enc.Encode(attrs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPackingEncoder_RejectsValuesOutsideChannel(t *testing.T) {
	tests := []struct {
		name  string
		attrs models.ApplicantAttributes
	}{
		{"age wider than one byte", models.NewApplicantAttributes(300, 0, 1, 50, 1, 1)},
		{"negative region", models.NewApplicantAttributes(20, -1, 1, 50, 1, 1)},
		{"region wider than two bytes", models.NewApplicantAttributes(20, 70000, 1, 50, 1, 1)},
		{"negative interview", models.NewApplicantAttributes(20, 0, 1, 50, 1, -2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPackingEncoder().Encode(tt.attrs)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrEncodingFailed)
		})
	}
}

func TestSealedBoxEncoder_RoundTripsAndIsNotPlaintext(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	enc := NewSealedBoxEncoder(pub)
	attrs := models.NewApplicantAttributes(15, 300, 2, 85, 8, 9)

	p, err := enc.Encode(attrs)
	require.NoError(t, err)
	assert.Equal(t, config.SchemeSealedBox, p.Scheme)
	assert.Len(t, p.Age, AgeWidth+SealedBoxOverhead)
	assert.Len(t, p.Exam, ExamWidth+SealedBoxOverhead)

	opened, ok := box.OpenAnonymous(nil, p.Exam, pub, priv)
	require.True(t, ok)
	assert.Equal(t, []byte{0x00, 85}, opened)

	opened, ok = box.OpenAnonymous(nil, p.Region, pub, priv)
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x2c}, opened)

	again, err := enc.Encode(attrs)
	require.NoError(t, err)
	assert.NotEqual(t, p.Age, again.Age)
}

func TestSealedBoxEncoder_ChannelWidthStillEnforced(t *testing.T) {
	pub, _, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, err = NewSealedBoxEncoder(pub).Encode(models.NewApplicantAttributes(256, 0, 1, 50, 1, 1))
	assert.ErrorIs(t, err, apperrors.ErrEncodingFailed)
}

func TestNew(t *testing.T) {
	enc, err := New(config.EncryptionConfig{Scheme: config.SchemePacking})
	require.NoError(t, err)
	assert.Equal(t, config.SchemePacking, enc.Scheme())

	pub, _, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)
	enc, err = New(config.EncryptionConfig{Scheme: config.SchemeSealedBox, PublicKey: "0x" + hex.EncodeToString(pub[:])})
	require.NoError(t, err)
	assert.Equal(t, config.SchemeSealedBox, enc.Scheme())

	_, err = New(config.EncryptionConfig{Scheme: config.SchemeSealedBox, PublicKey: "abcd"})
	assert.Error(t, err)

	_, err = New(config.EncryptionConfig{Scheme: "rot13"})
	assert.Error(t, err)
}
