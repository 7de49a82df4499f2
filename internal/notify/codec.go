package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Codec кодирует пакет изменений в полезную нагрузку конверта
type Codec interface {
	// Name записывается в метаданные конверта, по нему получатель выбирает декодер
	Name() string
	Encode(changes []BlockChange) ([]byte, error)
	Decode(payload []byte) ([]BlockChange, error)
}

type jsonCodec struct{}

// NewJSONCodec возвращает кодек JSON без сжатия
func NewJSONCodec() Codec { return jsonCodec{} }

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(changes []BlockChange) ([]byte, error) {
	return json.Marshal(changes)
}

func (jsonCodec) Decode(payload []byte) ([]BlockChange, error) {
	var changes []BlockChange
	if err := json.Unmarshal(payload, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// cborCodec использует json-теги структур, поэтому формат полей совпадает с JSON
type cborCodec struct {
	em cbor.EncMode
}

// NewCBORCodec возвращает компактный двоичный кодек CBOR
func NewCBORCodec() (Codec, error) {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{em: em}, nil
}

func (cborCodec) Name() string { return "cbor" }

func (c cborCodec) Encode(changes []BlockChange) ([]byte, error) {
	return c.em.Marshal(changes)
}

func (cborCodec) Decode(payload []byte) ([]BlockChange, error) {
	var changes []BlockChange
	if err := cbor.Unmarshal(payload, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// zstdCodec сжимает результат вложенного кодека
type zstdCodec struct {
	inner Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstdCodec оборачивает inner сжатием zstd.
// EncodeAll и DecodeAll безопасны для одновременного вызова.
func NewZstdCodec(inner Codec) (Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}
	return &zstdCodec{inner: inner, enc: enc, dec: dec}, nil
}

func (z *zstdCodec) Name() string { return z.inner.Name() + "+zstd" }

func (z *zstdCodec) Encode(changes []BlockChange) ([]byte, error) {
	raw, err := z.inner.Encode(changes)
	if err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (z *zstdCodec) Decode(payload []byte) ([]BlockChange, error) {
	raw, err := z.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки zstd: %w", err)
	}
	return z.inner.Decode(raw)
}

// NewCodec создаёт кодек по формату (json или cbor), при compress со сжатием zstd
func NewCodec(format string, compress bool) (Codec, error) {
	var (
		base Codec
		err  error
	)
	switch format {
	case "", "json":
		base = NewJSONCodec()
	case "cbor":
		base, err = NewCBORCodec()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("неизвестный формат %q", format)
	}

	if !compress {
		return base, nil
	}
	return NewZstdCodec(base)
}

// CodecByName восстанавливает кодек по имени из метаданных конверта
func CodecByName(name string) (Codec, error) {
	format, compressed := strings.CutSuffix(name, "+zstd")
	return NewCodec(format, compressed)
}
