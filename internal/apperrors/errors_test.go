package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"room full", ErrRoomFull, protocol.ErrCodeRoomFull},
		{"wrapped", fmt.Errorf("join 1234: %w", ErrRoomNotFound), protocol.ErrCodeRoomNotFound},
		{"plain error", fmt.Errorf("boom"), protocol.ErrCodeUnknown},
		{"nil", nil, protocol.ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestEveryErrorHasMessage(t *testing.T) {
	t.Parallel()

	for _, e := range []*GameError{
		ErrRoomNotFound, ErrRoomFull, ErrNotInRoom, ErrGameStarted, ErrGameNotStart,
		ErrNotYourTurn, ErrInvalidName, ErrNoRoomCode, ErrDrawPileEmpty,
	} {
		assert.NotEmpty(t, e.Error())
		assert.Contains(t, protocol.ErrorMessages, e.Code, "code %d has no client message", e.Code)
	}
}
