package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestValueJSONKeepsTimestampOffset(t *testing.T) {
	var data map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"seenAt":"2024-01-01T00:00:00+05:30","note":"near gate 3","count":2}`), &data))

	seenAt := data["seenAt"]
	require.Equal(t, ValueKindTime, seenAt.Kind)
	_, offset := seenAt.Time.Zone()
	assert.Equal(t, 5*3600+30*60, offset)
	assert.Equal(t, StringValue("near gate 3"), data["note"])
	assert.Equal(t, NumberValue(2), data["count"])

	out, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"seenAt":"2024-01-01T00:00:00+05:30"`)
}

func TestValueBSONKeepsTimestampOffset(t *testing.T) {
	type doc struct {
		Data map[string]Value `bson:"data"`
	}
	ist := time.FixedZone("IST", 5*3600+30*60)
	in := doc{Data: map[string]Value{
		"seenAt": TimeValue(time.Date(2024, 1, 1, 0, 0, 0, 0, ist)),
		"note":   StringValue("near gate 3"),
		"panic":  BoolValue(true),
	}}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, "2024-01-01T00:00:00+05:30", out.Data["seenAt"].String())
	assert.True(t, in.Data["seenAt"].Time.Equal(out.Data["seenAt"].Time))
	assert.Equal(t, StringValue("near gate 3"), out.Data["note"])
	assert.Equal(t, BoolValue(true), out.Data["panic"])
}

func TestValueDecodesLegacyDateTime(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.M{"data": bson.M{"seenAt": at}})
	require.NoError(t, err)

	var out struct {
		Data map[string]Value `bson:"data"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, "2024-03-05T10:00:00Z", out.Data["seenAt"].String())
}

func TestValueRejectsNonScalars(t *testing.T) {
	var v Value
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"nested":true}`), &v), ErrNonScalarValue)
	assert.ErrorIs(t, json.Unmarshal([]byte(`[1,2]`), &v), ErrNonScalarValue)
}

func TestAlertStatusTerminal(t *testing.T) {
	assert.False(t, AlertStatusActive.Terminal())
	assert.False(t, AlertStatusAcknowledged.Terminal())
	assert.True(t, AlertStatusResolved.Terminal())
	assert.True(t, AlertStatusFalseAlarm.Terminal())
	assert.False(t, AlertStatus("closed").Terminal())
}
