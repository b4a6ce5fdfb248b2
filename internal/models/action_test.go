package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionKind_Valid(t *testing.T) {
	assert.True(t, ActionCreate.Valid())
	assert.True(t, ActionUpdate.Valid())
	assert.True(t, ActionDelete.Valid())
	assert.False(t, ActionKind("UPSERT").Valid())
	assert.False(t, ActionKind("").Valid())
}

func TestAction_TargetID(t *testing.T) {
	tests := []struct {
		payload map[string]any
		name    string
		want    string
		wantErr bool
	}{
		{
			name:    "valid id",
			payload: map[string]any{"id": "rec-42", "amount": 50},
			want:    "rec-42",
		},
		{
			name:    "missing id",
			payload: map[string]any{"amount": 50},
			wantErr: true,
		},
		{
			name:    "empty id",
			payload: map[string]any{"id": ""},
			wantErr: true,
		},
		{
			name:    "non-string id",
			payload: map[string]any{"id": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := &Action{Payload: tt.payload}
			id, err := action.TargetID()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestAction_Exhausted(t *testing.T) {
	action := &Action{RetryCount: 2, MaxRetries: 3}
	assert.False(t, action.Exhausted())

	action.RetryCount = 3
	assert.True(t, action.Exhausted())
}

func TestAction_Clone(t *testing.T) {
	original := &Action{
		ID:      "a1",
		Kind:    ActionCreate,
		Entity:  "expenses",
		Payload: map[string]any{"amount": 50},
	}

	clone := original.Clone()
	clone.Payload["amount"] = 100
	clone.RetryCount = 5

	// Мутация копии не должна затрагивать оригинал
	assert.Equal(t, 50, original.Payload["amount"])
	assert.Equal(t, 0, original.RetryCount)
}
