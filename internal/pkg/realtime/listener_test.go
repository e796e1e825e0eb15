package realtime

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Trigger payloads are built with json_build_object and TG_OP, so the op
// arrives uppercase. These tests pin the wire format so a change on either
// side shows up here.
func TestChangeEvent_DecodesTriggerPayload(t *testing.T) {
	cases := []struct {
		payload string
		want    ChangeEvent
	}{
		{
			payload: `{"table" : "exams", "op" : "INSERT", "id" : 7, "teacherId" : 3}`,
			want:    ChangeEvent{Table: "exams", Op: OpInsert, ID: 7, TeacherID: 3},
		},
		{
			payload: `{"table" : "pupils", "op" : "UPDATE", "id" : 12, "teacherId" : 1}`,
			want:    ChangeEvent{Table: "pupils", Op: OpUpdate, ID: 12, TeacherID: 1},
		},
		{
			payload: `{"table" : "corrections", "op" : "DELETE", "id" : 4, "teacherId" : 2}`,
			want:    ChangeEvent{Table: "corrections", Op: OpDelete, ID: 4, TeacherID: 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.want.Op, func(t *testing.T) {
			var event ChangeEvent
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &event))
			assert.Equal(t, tc.want, event)
		})
	}
}

func TestChangeEvent_TriggerPayloadRoutesThroughBroker(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub := b.Subscribe("exams", 3)

	payload := fmt.Sprintf(`{"table" : "exams", "op" : "%s", "id" : 7, "teacherId" : 3}`, OpUpdate)
	var event ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &event))
	b.Publish(event)

	got := receiveEvent(t, sub)
	assert.Equal(t, OpUpdate, got.Op)
	assert.Equal(t, int64(7), got.ID)
}
