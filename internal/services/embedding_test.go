package services

import (
	"testing"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

func TestNotExpiredFilter(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	filter := notExpiredFilter(now)

	if len(filter.Must) != 1 {
		t.Fatalf("filter has %d conditions, expected 1", len(filter.Must))
	}
	field, ok := filter.Must[0].ConditionOneOf.(*qdrant.Condition_Field)
	if !ok {
		t.Fatalf("condition is %T, expected a field condition", filter.Must[0].ConditionOneOf)
	}
	if field.Field.Key != "expires_at" {
		t.Errorf("filter key = %q, expected %q", field.Field.Key, "expires_at")
	}
	if field.Field.Range == nil || field.Field.Range.Gt == nil {
		t.Fatal("filter range has no lower bound")
	}
	if got := *field.Field.Range.Gt; got != float64(now.Unix()) {
		t.Errorf("range Gt = %v, expected %v", got, float64(now.Unix()))
	}
}

func TestToQdrantPayloadStoresUnixTimestamp(t *testing.T) {
	expires := time.Date(2026, 11, 27, 0, 0, 0, 0, time.UTC).Unix()
	payload := toQdrantPayload(map[string]interface{}{"expires_at": expires})

	value, ok := payload["expires_at"].Kind.(*qdrant.Value_IntegerValue)
	if !ok {
		t.Fatalf("expires_at stored as %T, expected an integer value", payload["expires_at"].Kind)
	}
	if value.IntegerValue != expires {
		t.Errorf("expires_at = %d, expected %d", value.IntegerValue, expires)
	}
}
