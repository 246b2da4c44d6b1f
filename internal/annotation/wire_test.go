package annotation

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"testing"
	"testing/quick"

	"github.com/ashwinyue/next-label/internal/errs"
)

// roundTrip 经过 JSON 编解码，覆盖线上真实路径
func roundTrip(t *testing.T, codec Codec, a Annotation) Annotation {
	t.Helper()
	data, err := json.Marshal(codec.Encode(a))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	got, err := codec.Decode(rec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTrip_AllShapes(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		value Annotation
	}{
		{name: "category", codec: Categories.Codec(), value: &Category{Base: Base{ID: 1, Label: 2, Owner: 3}}},
		{name: "unpersisted category", codec: Categories.Codec(), value: &Category{Base: Base{Label: 2}}},
		{name: "text label", codec: Texts.Codec(), value: &TextLabel{Base: Base{ID: 4, Owner: 3}, Text: "héllo wörld"}},
		{name: "text label empty text", codec: Texts.Codec(), value: &TextLabel{Base: Base{ID: 4, Owner: 3}}},
		{name: "text label with label", codec: Texts.Codec(), value: &TextLabel{Base: Base{ID: 4, Label: 8, Owner: 3}, Text: "x"}},
		{name: "span", codec: Spans.Codec(), value: &Span{Base: Base{ID: 5, Label: 6, Owner: 3}, StartOffset: 0, EndOffset: 12}},
		{name: "relation", codec: Relations.Codec(), value: &Relation{Base: Base{ID: 7, Owner: 3}, FromID: 5, ToID: 9, Type: 11}},
		{name: "bounding box", codec: BoundingBoxes.Codec(), value: &BoundingBox{
			Base: Base{ID: 8, Label: 2, Owner: 3}, UUID: "2f1c6a4e-6b9e-4a8e-9c1e-2d7f3b0a5c11",
			X: 0.125, Y: 0.5, Width: 0.25, Height: 1.0 / 3.0,
		}},
		{name: "segmentation", codec: Segmentations.Codec(), value: &Segmentation{
			Base: Base{ID: 9, Label: 2, Owner: 3}, UUID: "b7f4b2f0-0f7a-4c59-8a34-2c2d9a0e7f10",
			Points: []Point{{X: 0, Y: 0}, {X: 10.5, Y: 0}, {X: 10.5, Y: 7.25}},
		}},
		{name: "seq2seq", codec: Seq2seqs.Codec(), value: &Seq2seq{Base: Base{ID: 10, Owner: 3}, Text: "translated target"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.codec, tt.value)
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("round trip = %#v, want %#v", got, tt.value)
			}
		})
	}
}

func TestRoundTrip_SpanProperty(t *testing.T) {
	f := func(id, label, owner int64, start uint32, length uint16) bool {
		s := &Span{
			Base:        Base{ID: id, Label: label, Owner: owner},
			StartOffset: int64(start),
			EndOffset:   int64(start) + int64(length) + 1,
		}
		got, err := SpanFromWire(s.ToWire())
		return err == nil && reflect.DeepEqual(got, s)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTrip_BoundingBoxProperty(t *testing.T) {
	f := func(id, label int64, x, y, w, h float64) bool {
		b := NewBoundingBox(label, x, y, w, h)
		b.ID = id
		data, err := json.Marshal(b.ToWire())
		if err != nil {
			return false
		}
		rec, err := DecodeRecord(data)
		if err != nil {
			return false
		}
		got, err := BoundingBoxFromWire(rec)
		return err == nil && reflect.DeepEqual(got, b)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTrip_RelationProperty(t *testing.T) {
	f := func(id, owner, from, to, typ int64) bool {
		r := &Relation{Base: Base{ID: id, Owner: owner}, FromID: from, ToID: to, Type: typ}
		got, err := RelationFromWire(r.ToWire())
		return err == nil && reflect.DeepEqual(got, r)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTrip_SegmentationProperty(t *testing.T) {
	f := func(id, label, owner int64, ident string, coords []float64) bool {
		points := make([]Point, 0, len(coords)/2)
		for i := 0; i+1 < len(coords); i += 2 {
			points = append(points, Point{X: coords[i], Y: coords[i+1]})
		}
		s := &Segmentation{Base: Base{ID: id, Label: label, Owner: owner}, UUID: ident, Points: points}
		data, err := json.Marshal(s.ToWire())
		if err != nil {
			return false
		}
		rec, err := DecodeRecord(data)
		if err != nil {
			return false
		}
		got, err := SegmentationFromWire(rec)
		return err == nil && reflect.DeepEqual(got, s)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTrip_EmptyUUIDAndPoints(t *testing.T) {
	box := &BoundingBox{Base: Base{ID: 1, Label: 2}, Width: 1, Height: 1}
	if got := roundTrip(t, BoundingBoxes.Codec(), box); !reflect.DeepEqual(got, box) {
		t.Errorf("box round trip = %#v, want %#v", got, box)
	}

	seg := &Segmentation{Base: Base{ID: 3, Label: 2}, Points: []Point{}}
	got := roundTrip(t, Segmentations.Codec(), seg)
	if !reflect.DeepEqual(got, seg) {
		t.Errorf("segmentation round trip = %#v, want %#v", got, seg)
	}

	if NewSegmentation(2, nil).Points == nil {
		t.Error("NewSegmentation must not leave points nil")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		raw   string
		field string
	}{
		{name: "span missing start", codec: Spans.Codec(), raw: `{"id":1,"label":2,"end_offset":3}`, field: "start_offset"},
		{name: "span fractional offset", codec: Spans.Codec(), raw: `{"id":1,"label":2,"start_offset":1.5,"end_offset":3}`, field: "start_offset"},
		{name: "span string offset", codec: Spans.Codec(), raw: `{"id":1,"label":2,"start_offset":"1","end_offset":3}`, field: "start_offset"},
		{name: "category missing label", codec: Categories.Codec(), raw: `{"id":1,"user":2}`, field: "label"},
		{name: "category null label", codec: Categories.Codec(), raw: `{"id":1,"label":null}`, field: "label"},
		{name: "relation missing type", codec: Relations.Codec(), raw: `{"id":1,"from_id":2,"to_id":3}`, field: "type"},
		{name: "text not string", codec: Texts.Codec(), raw: `{"id":1,"text":42}`, field: "text"},
		{name: "bbox string coordinate", codec: BoundingBoxes.Codec(), raw: `{"label":1,"x":"0","y":0,"width":1,"height":1}`, field: "x"},
		{name: "segment odd points", codec: Segmentations.Codec(), raw: `{"label":1,"points":[1,2,3]}`, field: "points"},
		{name: "segment non-array points", codec: Segmentations.Codec(), raw: `{"label":1,"points":"1,2"}`, field: "points"},
		{name: "uuid not string", codec: BoundingBoxes.Codec(), raw: `{"label":1,"uuid":5,"x":0,"y":0,"width":1,"height":1}`, field: "uuid"},
		{name: "id fractional", codec: Seq2seqs.Codec(), raw: `{"id":2.5,"text":"a"}`, field: "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeRecord: %v", err)
			}
			_, err = tt.codec.Decode(rec)
			if !errors.Is(err, errs.ErrDecode) {
				t.Fatalf("Decode() error = %v, want ErrDecode", err)
			}
			var de *errs.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error %v is not a *DecodeError", err)
			}
			if de.Field != tt.field {
				t.Errorf("Field = %q, want %q", de.Field, tt.field)
			}
		})
	}
}

func TestDecode_ToleratesMissingOptionalFields(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"label":3,"x":1,"y":2,"width":3,"height":4}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := BoundingBoxFromWire(rec)
	if err != nil {
		t.Fatalf("BoundingBoxFromWire: %v", err)
	}
	if b.ID != 0 || b.Owner != 0 {
		t.Errorf("ID/Owner = %d/%d, want 0/0", b.ID, b.Owner)
	}
	if b.UUID == "" {
		t.Error("missing uuid should be generated client-side")
	}

	again, err := BoundingBoxFromWire(b.ToWire())
	if err != nil {
		t.Fatal(err)
	}
	if again.UUID != b.UUID {
		t.Errorf("generated uuid must be stable across re-encoding: %s != %s", again.UUID, b.UUID)
	}
}

func TestDecode_WholeFloatIsInteger(t *testing.T) {
	s, err := SpanFromWire(Record{"label": 1.0, "start_offset": float64(2), "end_offset": 4})
	if err != nil {
		t.Fatalf("SpanFromWire: %v", err)
	}
	if s.StartOffset != 2 || s.EndOffset != 4 || s.Label != 1 {
		t.Errorf("got %+v", s)
	}
}

func TestEncode_EmitsFieldTable(t *testing.T) {
	values := map[Kind]Annotation{
		KindCategory:     &Category{Base: Base{ID: 1, Label: 1}},
		KindText:         &TextLabel{Base: Base{ID: 1, Label: 1}, Text: "a"},
		KindSpan:         &Span{Base: Base{ID: 1, Label: 1}, EndOffset: 1},
		KindRelation:     &Relation{Base: Base{ID: 1, Label: 1}, FromID: 1, ToID: 2, Type: 3},
		KindBoundingBox:  NewBoundingBox(1, 0, 0, 1, 1),
		KindSegmentation: NewSegmentation(1, []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}),
		KindSeq2seq:      &Seq2seq{Base: Base{ID: 1, Label: 1}, Text: "a"},
	}

	for _, codec := range Codecs() {
		t.Run(string(codec.Kind), func(t *testing.T) {
			rec := codec.Encode(values[codec.Kind])
			var got, want []string
			for k := range rec {
				got = append(got, k)
			}
			for _, f := range codec.Fields {
				want = append(want, f.Wire)
			}
			sort.Strings(got)
			sort.Strings(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("encoded keys = %v, want %v", got, want)
			}
		})
	}
}

func TestCodec_Merge(t *testing.T) {
	codec := Relations.Codec()
	current := (&Relation{Base: Base{ID: 3, Owner: 1}, FromID: 1, ToID: 2, Type: 5}).ToWire()

	a, err := codec.Merge(current, TypePatch(6))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	r := a.(*Relation)
	if r.Type != 6 || r.FromID != 1 || r.ID != 3 {
		t.Errorf("merged = %+v", r)
	}

	for _, patch := range []Patch{{"id": 4}, {"user": 9}, {"color": "red"}, {}} {
		if _, err := codec.Merge(current, patch); !errors.Is(err, errs.ErrInvalidArgument) {
			t.Errorf("Merge(%v) error = %v, want ErrInvalidArgument", patch, err)
		}
	}

	if _, err := codec.Merge(current, Patch{"type": "six"}); !errors.Is(err, errs.ErrDecode) {
		t.Errorf("mistyped patch error = %v, want ErrDecode", err)
	}
}

func TestCodecByFragment(t *testing.T) {
	c, ok := CodecByFragment("texts")
	if !ok || c.Kind != KindText {
		t.Errorf("texts under examples should resolve to TextLabel, got %v %v", c.Kind, ok)
	}
	if _, ok := CodecByFragment("unknown"); ok {
		t.Error("unknown fragment should not resolve")
	}
	if c, ok := CodecFor(KindSeq2seq); !ok || c.Fragment != "texts" {
		t.Errorf("seq2seq codec = %+v", c)
	}
}

func TestShape_Paths(t *testing.T) {
	if got := Spans.Path(1, 2); got != "/projects/1/examples/2/spans" {
		t.Errorf("Spans.Path = %s", got)
	}
	if got := BoundingBoxes.ItemPath(1, 2, 3); got != "/projects/1/examples/2/bboxes/3" {
		t.Errorf("BoundingBoxes.ItemPath = %s", got)
	}
	if got := Seq2seqs.Path(1, 2); got != "/projects/1/seq2seq/examples/2/texts" {
		t.Errorf("Seq2seqs.Path = %s", got)
	}
}
