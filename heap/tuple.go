package heap

import (
	"encoding/binary"
	"math"

	"aistore/types"

	"github.com/pkg/errors"
)

// Tuple is one row's worth of decoded values, in column order.
type Tuple struct {
	Values []Value
}

// Serialize encodes a tuple against the given column schema: a leading
// null bitmap of ceil(n/8) bytes (LSB-first, bit i set = column i NULL),
// followed by little-endian fixed-width fields for non-null scalar
// columns and length-prefixed payloads for VarChar/Blob columns.
func Serialize(values []Value, cols []types.Column) ([]byte, error) {
	if len(values) != len(cols) {
		return nil, errors.Wrapf(ErrSerialization, "expected %d values, got %d", len(cols), len(values))
	}

	bitmapLen := (len(cols) + 7) / 8
	bitmap := make([]byte, bitmapLen)
	for i, v := range values {
		if v.IsNull() {
			if !cols[i].Nullable {
				return nil, errors.Wrapf(ErrSerialization, "column %q is not nullable", cols[i].Name)
			}
			bitmap[i/8] |= 1 << uint(i%8)
		}
	}

	body := make([]byte, 0, 64)
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		enc, err := encodeValue(v, cols[i].Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", cols[i].Name)
		}
		body = append(body, enc...)
	}

	out := make([]byte, 0, bitmapLen+len(body))
	out = append(out, bitmap...)
	out = append(out, body...)
	return out, nil
}

// Deserialize is the inverse of Serialize: it reconstructs the tuple's
// values against the same column schema used to encode it.
func Deserialize(data []byte, cols []types.Column) ([]Value, error) {
	bitmapLen := (len(cols) + 7) / 8
	if len(data) < bitmapLen {
		return nil, errors.Wrap(ErrSerialization, "truncated null bitmap")
	}
	bitmap := data[:bitmapLen]
	rest := data[bitmapLen:]

	values := make([]Value, len(cols))
	for i, col := range cols {
		isNull := bitmap[i/8]&(1<<uint(i%8)) != 0
		if isNull {
			values[i] = NullValue()
			continue
		}
		v, n, err := decodeValue(rest, col.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", col.Name)
		}
		values[i] = v
		rest = rest[n:]
	}
	return values, nil
}

func encodeValue(v Value, typ types.ColumnType) ([]byte, error) {
	switch typ.Kind {
	case types.KindInt8:
		return []byte{byte(int8(v.Int))}, nil
	case types.KindUInt8:
		return []byte{byte(uint8(v.Int))}, nil
	case types.KindBool:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case types.KindInt16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(v.Int)))
		return b, nil
	case types.KindUInt16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v.Int))
		return b, nil
	case types.KindInt32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(v.Int)))
		return b, nil
	case types.KindUInt32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v.Int))
		return b, nil
	case types.KindFloat32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.Float)))
		return b, nil
	case types.KindInt64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v.Int))
		return b, nil
	case types.KindUInt64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v.Int))
		return b, nil
	case types.KindFloat64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.Float))
		return b, nil
	case types.KindVarchar:
		return encodeVarLen([]byte(v.Str), typ.MaxLen)
	case types.KindBlob:
		return encodeVarLen(v.Bytes, typ.MaxLen)
	default:
		return nil, errors.Wrapf(ErrSerialization, "unsupported column kind %v", typ.Kind)
	}
}

func encodeVarLen(payload []byte, maxLen uint32) ([]byte, error) {
	if uint32(len(payload)) > maxLen {
		return nil, errors.Wrapf(ErrSerialization, "value length %d exceeds declared max %d", len(payload), maxLen)
	}
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out, nil
}

func decodeValue(data []byte, typ types.ColumnType) (Value, int, error) {
	switch typ.Kind {
	case types.KindInt8:
		if len(data) < 1 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(int8(data[0]))), 1, nil
	case types.KindUInt8:
		if len(data) < 1 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(data[0])), 1, nil
	case types.KindBool:
		if len(data) < 1 {
			return Value{}, 0, ErrSerialization
		}
		return BoolValue(data[0] != 0), 1, nil
	case types.KindInt16:
		if len(data) < 2 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(int16(binary.LittleEndian.Uint16(data)))), 2, nil
	case types.KindUInt16:
		if len(data) < 2 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(binary.LittleEndian.Uint16(data))), 2, nil
	case types.KindInt32:
		if len(data) < 4 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(int32(binary.LittleEndian.Uint32(data)))), 4, nil
	case types.KindUInt32:
		if len(data) < 4 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(binary.LittleEndian.Uint32(data))), 4, nil
	case types.KindFloat32:
		if len(data) < 4 {
			return Value{}, 0, ErrSerialization
		}
		return FloatValue(typ.Kind, float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))), 4, nil
	case types.KindInt64:
		if len(data) < 8 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(binary.LittleEndian.Uint64(data))), 8, nil
	case types.KindUInt64:
		if len(data) < 8 {
			return Value{}, 0, ErrSerialization
		}
		return IntValue(typ.Kind, int64(binary.LittleEndian.Uint64(data))), 8, nil
	case types.KindFloat64:
		if len(data) < 8 {
			return Value{}, 0, ErrSerialization
		}
		return FloatValue(typ.Kind, math.Float64frombits(binary.LittleEndian.Uint64(data))), 8, nil
	case types.KindVarchar:
		s, n, err := decodeVarLen(data)
		if err != nil {
			return Value{}, 0, err
		}
		return VarcharValue(string(s)), n, nil
	case types.KindBlob:
		b, n, err := decodeVarLen(data)
		if err != nil {
			return Value{}, 0, err
		}
		return BlobValue(b), n, nil
	default:
		return Value{}, 0, errors.Wrapf(ErrSerialization, "unsupported column kind %v", typ.Kind)
	}
}

func decodeVarLen(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, errors.Wrap(ErrSerialization, "truncated length prefix")
	}
	length := binary.LittleEndian.Uint32(data)
	total := 4 + int(length)
	if len(data) < total {
		return nil, 0, errors.Wrap(ErrSerialization, "truncated variable-length payload")
	}
	return data[4:total], total, nil
}
