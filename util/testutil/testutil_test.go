package testutil

import (
	"reflect"
	"testing"
)

type cell struct {
	Pos int    `json:"pos"`
	Sym string `json:"sym"`
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "simple struct",
			arg:  cell{-1, "a"},
			want: `{"pos":-1,"sym":"a"}`,
		},
		{
			name: "slice",
			arg:  []cell{{0, "x"}, {1, "y"}},
			want: `[{"pos":0,"sym":"x"},{"pos":1,"sym":"y"}]`,
		},
		{
			name: "unmarshalable",
			arg:  func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JS(tt.arg)
			if tt.want != "" && got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
			if got == "" {
				t.Error("empty")
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "valid JSON string",
			arg:  `{"state":"scan","head":-1}`,
			want: map[string]interface{}{"state": "scan", "head": float64(-1)},
		},
		{
			name: "valid JSON bytes",
			arg:  []byte(`["accept"]`),
			want: []interface{}{"accept"},
		},
		{
			name: "non-JSON string",
			arg:  "hello world",
			want: "hello world",
		},
		{
			name: "non-string, non-byte-slice type",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameJSON(t *testing.T) {
	if !SameJSON(`{"a":1,"b":[2]}`, map[string]interface{}{"b": []int{2}, "a": 1}) {
		t.Fatal("should be the same")
	}
	if SameJSON(`{"a":1}`, `{"a":2}`) {
		t.Fatal("should differ")
	}
}
