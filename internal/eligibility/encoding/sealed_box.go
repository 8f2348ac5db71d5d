package encoding

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/box"

	"eligibility-workers/internal/common/config"
	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

// SealedBoxOverhead is the per-channel ciphertext expansion.
const SealedBoxOverhead = box.AnonymousOverhead

// SealedBoxEncoder seals every packed channel independently to the authority's X25519 key.
// Ciphertexts differ between calls for the same attributes.
type SealedBoxEncoder struct {
	recipient *[32]byte
	rand      io.Reader
}

func NewSealedBoxEncoder(recipient *[32]byte) *SealedBoxEncoder {
	return &SealedBoxEncoder{recipient: recipient, rand: rand.Reader}
}

// NewSealedBoxEncoderFromHex parses a 32-byte hex key, with or without 0x.
func NewSealedBoxEncoderFromHex(publicKey string) (*SealedBoxEncoder, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(publicKey, "0x"))
	if err != nil || len(raw) != 32 {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("sealed-box public key must be 32 hex bytes, got %q", publicKey))
	}
	var key [32]byte
	copy(key[:], raw)
	return NewSealedBoxEncoder(&key), nil
}

func (e *SealedBoxEncoder) Scheme() string { return config.SchemeSealedBox }

func (e *SealedBoxEncoder) Encode(attrs models.ApplicantAttributes) (models.EncryptedPayload, error) {
	p, err := pack(attrs)
	if err != nil {
		return models.EncryptedPayload{}, err
	}

	channels := []*[]byte{&p.Age, &p.Region, &p.Income, &p.Exam, &p.Extracurricular, &p.Interview}
	for _, ch := range channels {
		sealed, err := box.SealAnonymous(nil, *ch, e.recipient, e.rand)
		if err != nil {
			return models.EncryptedPayload{}, apperrors.NewEncryptionError(err)
		}
		*ch = sealed
	}

	p.Scheme = e.Scheme()
	return p, nil
}
