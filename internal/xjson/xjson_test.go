package xjson

import (
	"testing"
)

func TestRoundtrip_DeepCopies(t *testing.T) {
	src := map[string]interface{}{
		"nested": map[string]interface{}{"k": "v"},
	}

	var dst map[string]interface{}
	if err := Roundtrip(src, &dst); err != nil {
		t.Fatalf("roundtrip failed: %v", err)
	}

	src["nested"].(map[string]interface{})["k"] = "mutated"

	if dst["nested"].(map[string]interface{})["k"] != "v" {
		t.Error("copy shares structure with the source")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := Marshal(map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out map[string]int
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out["n"] != 1 {
		t.Errorf("got %d, want 1", out["n"])
	}
}
