package mon

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRegisterAndSnapshot(t *testing.T) {
	r := NewRoll()
	b := NewBuilder()
	ops := b.Counter("ops", KindUint64)
	b.BegObject("xfer")
	bytesCtr := b.Counter("bytes", KindInt64)
	b.EndObject("xfer")
	b.BegArray("tag")
	nameText := b.Text("name")
	b.EndArray("tag")

	set, err := r.Register("http", KindAddOn, b)
	if err != nil {
		t.Fatal(err)
	}
	ops.Add(3)
	bytesCtr.Set(4096)
	nameText.Set("worker-1")
	_ = set

	jsonOut, xmlOut := r.Snapshot()

	var got map[string]interface{}
	if err := json.Unmarshal([]byte("{"+string(jsonOut)+"}"), &got); err != nil {
		t.Fatalf("Snapshot produced invalid JSON: %v\n%s", err, jsonOut)
	}
	stats, ok := got["stats_http"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing stats_http object in %v", got)
	}
	if stats["ops"].(float64) != 3 {
		t.Errorf("ops = %v, want 3", stats["ops"])
	}
	xfer := stats["xfer"].(map[string]interface{})
	if xfer["bytes"].(float64) != 4096 {
		t.Errorf("xfer.bytes = %v, want 4096", xfer["bytes"])
	}

	if !strings.Contains(string(xmlOut), `<stats id="http">`) {
		t.Errorf("xml missing stats wrapper: %s", xmlOut)
	}
	if !strings.Contains(string(xmlOut), "<tag>worker-1</tag>") {
		t.Errorf("xml array element not tagged with array key: %s", xmlOut)
	}
}

func TestDuplicateSetNameRejected(t *testing.T) {
	r := NewRoll()
	if _, err := r.Register("dup", KindAddOn, NewBuilder()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("dup", KindAddOn, NewBuilder()); err == nil {
		t.Fatal("expected an error re-registering the same set name")
	}
}

func TestUnbalancedSchemaRejected(t *testing.T) {
	r := NewRoll()
	b := NewBuilder()
	b.BegObject("open")
	if _, err := r.Register("unbalanced", KindAddOn, b); err == nil {
		t.Fatal("expected an error for an unclosed BegObject")
	}
}

func TestMismatchedEndKeyRejected(t *testing.T) {
	b := NewBuilder()
	b.BegObject("a")
	if err := b.EndObject("b"); err == nil {
		t.Fatal("expected an error closing a different key than was opened")
	}
}

func TestEmptySetProducesEmptyOutput(t *testing.T) {
	r := NewRoll()
	if _, err := r.Register("empty", KindAddOn, NewBuilder()); err != nil {
		t.Fatal(err)
	}
	jsonOut, xmlOut := r.Snapshot()
	if !strings.Contains(string(jsonOut), `"stats_empty":{}`) {
		t.Errorf("empty set JSON = %s, want an empty object", jsonOut)
	}
	if !strings.Contains(string(xmlOut), `<stats id="empty"></stats>`) {
		t.Errorf("empty set XML = %s, want an empty element", xmlOut)
	}
}
