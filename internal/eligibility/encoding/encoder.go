// Package encoding turns validated attributes into per-channel payloads for the ledger authority.
// Encoders run last before transmission and do not repeat validation.
package encoding

import (
	"encoding/binary"
	"fmt"

	"eligibility-workers/internal/common/config"
	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

// Encoder produces an EncryptedPayload with one independent channel per attribute.
type Encoder interface {
	Encode(attrs models.ApplicantAttributes) (models.EncryptedPayload, error)
	Scheme() string
}

// Channel widths in bytes.
const (
	AgeWidth             = 1
	RegionWidth          = 2
	IncomeWidth          = 1
	ExamWidth            = 2
	ExtracurricularWidth = 1
	InterviewWidth       = 1
)

// New returns the encoder configured by scheme.
func New(cfg config.EncryptionConfig) (Encoder, error) {
	switch cfg.Scheme {
	case "", config.SchemePacking:
		return NewPackingEncoder(), nil
	case config.SchemeSealedBox:
		return NewSealedBoxEncoderFromHex(cfg.PublicKey)
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown encryption scheme %q", cfg.Scheme))
	}
}

// pack writes each attribute big-endian into its channel, rejecting values that do not fit.
func pack(attrs models.ApplicantAttributes) (models.EncryptedPayload, error) {
	var p models.EncryptedPayload
	var err error

	if p.Age, err = packUint("age", attrs.Age(), AgeWidth); err != nil {
		return p, err
	}
	if p.Region, err = packUint("region", attrs.RegionCode(), RegionWidth); err != nil {
		return p, err
	}
	if p.Income, err = packUint("income", attrs.IncomeBracket(), IncomeWidth); err != nil {
		return p, err
	}
	if p.Exam, err = packUint("exam", attrs.ExamScore(), ExamWidth); err != nil {
		return p, err
	}
	if p.Extracurricular, err = packUint("extracurricular", attrs.ExtracurricularScore(), ExtracurricularWidth); err != nil {
		return p, err
	}
	if p.Interview, err = packUint("interview", attrs.InterviewScore(), InterviewWidth); err != nil {
		return p, err
	}
	return p, nil
}

func packUint(channel string, v, width int) ([]byte, error) {
	if v < 0 || v >= 1<<(8*width) {
		return nil, apperrors.NewEncodingError(channel, v, width)
	}
	buf := make([]byte, width)
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(v))
	}
	return buf, nil
}

// PackingEncoder is deterministic wire packing with no confidentiality. Local chains only.
type PackingEncoder struct{}

func NewPackingEncoder() *PackingEncoder { return &PackingEncoder{} }

func (e *PackingEncoder) Scheme() string { return config.SchemePacking }

func (e *PackingEncoder) Encode(attrs models.ApplicantAttributes) (models.EncryptedPayload, error) {
	p, err := pack(attrs)
	if err != nil {
		return models.EncryptedPayload{}, err
	}
	p.Scheme = e.Scheme()
	return p, nil
}
