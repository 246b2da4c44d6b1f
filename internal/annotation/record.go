package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ashwinyue/next-label/internal/errs"
)

// Record 线上记录（snake_case 字段名）
type Record map[string]any

// DecodeRecord 解析单条线上记录，数字保留为 json.Number 以便精确判断整数
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: record is null", errs.ErrDecode)
	}
	return rec, nil
}

// DecodeRecords 解析线上记录数组
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var recs []Record
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}
	for i, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is null", errs.ErrDecode, i)
		}
	}
	return recs, nil
}

// Clone 浅拷贝记录
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// fieldReader 按形态读取字段，错误统一为 DecodeError
type fieldReader struct {
	shape string
	rec   Record
}

func (fr fieldReader) lookup(field string, required bool) (any, bool, error) {
	v, ok := fr.rec[field]
	if !ok || v == nil {
		if required {
			return nil, false, errs.Decode(fr.shape, field, "required field is missing")
		}
		return nil, false, nil
	}
	return v, true, nil
}

func (fr fieldReader) int64(field string, required bool) (int64, error) {
	v, ok, err := fr.lookup(field, required)
	if err != nil || !ok {
		return 0, err
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, errs.Decode(fr.shape, field, err.Error())
	}
	return n, nil
}

func (fr fieldReader) float64(field string, required bool) (float64, error) {
	v, ok, err := fr.lookup(field, required)
	if err != nil || !ok {
		return 0, err
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, errs.Decode(fr.shape, field, err.Error())
	}
	return f, nil
}

func (fr fieldReader) string(field string, required bool) (string, error) {
	v, ok, err := fr.lookup(field, required)
	if err != nil || !ok {
		return "", err
	}
	s, isString := v.(string)
	if !isString {
		return "", errs.Decode(fr.shape, field, fmt.Sprintf("must be a string, got %T", v))
	}
	return s, nil
}

func (fr fieldReader) floats(field string, required bool) ([]float64, error) {
	v, ok, err := fr.lookup(field, required)
	if err != nil || !ok {
		return nil, err
	}
	switch list := v.(type) {
	case []float64:
		return append([]float64(nil), list...), nil
	case []any:
		out := make([]float64, 0, len(list))
		for i, item := range list {
			f, err := toFloat64(item)
			if err != nil {
				return nil, errs.Decode(fr.shape, field, fmt.Sprintf("item %d: %v", i, err))
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, errs.Decode(fr.shape, field, fmt.Sprintf("must be an array of numbers, got %T", v))
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %q", n.String())
		}
		return wholeFloat(f)
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return wholeFloat(n)
	default:
		return 0, fmt.Errorf("must be an integer, got %T", v)
	}
}

func wholeFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("must be an integer, got %v", f)
	}
	return int64(f), nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number, got %q", n.String())
		}
		return f, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("must be a number, got %T", v)
	}
}
