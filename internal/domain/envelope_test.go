package domain

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestWrapPayload_Shape(t *testing.T) {
	env := WrapPayload(map[string]interface{}{"x": 1})

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	expected := `{"main":[[{"json":{"x":1}}]]}`
	if string(data) != expected {
		t.Errorf("expected %s, got %s", expected, string(data))
	}
}

func TestEnvelope_FirstItem(t *testing.T) {
	env := WrapPayload("hello")

	payload, ok := env.FirstItem()
	if !ok {
		t.Fatal("expected a first item")
	}
	if payload != "hello" {
		t.Errorf("expected 'hello', got %v", payload)
	}

	if _, ok := (Envelope{}).FirstItem(); ok {
		t.Error("empty envelope should have no first item")
	}

	var nilEnv Envelope
	if _, ok := nilEnv.FirstItem(); ok {
		t.Error("nil envelope should have no first item")
	}
}

func TestEnvelope_Items_FlattensRuns(t *testing.T) {
	env := Envelope{
		MainPort: {
			{Item{JSON: 1}, Item{JSON: 2}},
			{Item{JSON: 3}},
		},
	}

	items := env.Items(MainPort)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []int{1, 2, 3} {
		if items[i].JSON != want {
			t.Errorf("item %d: expected %d, got %v", i, want, items[i].JSON)
		}
	}
}

func TestEnvelope_IsEmpty(t *testing.T) {
	if !(Envelope{}).IsEmpty() {
		t.Error("empty envelope should be empty")
	}
	if !(Envelope{MainPort: {{}}}).IsEmpty() {
		t.Error("envelope with empty run should be empty")
	}
	if WrapPayload(nil).IsEmpty() {
		t.Error("wrapped payload should not be empty")
	}
}

func TestEnvelope_Clone_Isolation(t *testing.T) {
	original := WrapPayload(map[string]interface{}{"count": float64(1)})

	clone, err := original.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	payload, _ := clone.FirstItem()
	payload.(map[string]interface{})["count"] = float64(99)

	originalPayload, _ := original.FirstItem()
	if originalPayload.(map[string]interface{})["count"] != float64(1) {
		t.Error("mutating the clone leaked into the original")
	}
}
