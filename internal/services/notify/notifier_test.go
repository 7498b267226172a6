package notify

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Send(_ context.Context, message string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.messages = append(f.messages, message)
	return true, nil
}

func TestSendOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate suppressed", func(t *testing.T) {
		inner := &fakeNotifier{}
		n := NewOnceNotifier(inner, zap.NewNop())

		delivered, err := n.SendOnce(ctx, "deployed", false)
		require.NoError(t, err)
		assert.True(t, delivered)

		delivered, err = n.SendOnce(ctx, "deployed", false)
		require.NoError(t, err)
		assert.False(t, delivered)

		assert.Equal(t, []string{"deployed"}, inner.messages)
	})

	t.Run("override bypasses dedup", func(t *testing.T) {
		inner := &fakeNotifier{}
		n := NewOnceNotifier(inner, zap.NewNop())

		_, err := n.SendOnce(ctx, "deployed", false)
		require.NoError(t, err)
		delivered, err := n.SendOnce(ctx, "deployed", true)
		require.NoError(t, err)
		assert.True(t, delivered)

		assert.Len(t, inner.messages, 2)
	})

	t.Run("failed send is not recorded", func(t *testing.T) {
		inner := &fakeNotifier{err: errors.New("gateway down")}
		n := NewOnceNotifier(inner, zap.NewNop())

		_, err := n.SendOnce(ctx, "deployed", false)
		require.Error(t, err)

		// once the gateway recovers the same message goes through
		inner.err = nil
		delivered, err := n.SendOnce(ctx, "deployed", false)
		require.NoError(t, err)
		assert.True(t, delivered)
	})

	t.Run("plain send ignores dedup", func(t *testing.T) {
		inner := &fakeNotifier{}
		n := NewOnceNotifier(inner, zap.NewNop())

		for i := 0; i < 3; i++ {
			delivered, err := n.Send(ctx, "alive")
			require.NoError(t, err)
			assert.True(t, delivered)
		}
		assert.Len(t, inner.messages, 3)

		// plain sends do not poison the dedup set either
		delivered, err := n.SendOnce(ctx, "alive", false)
		require.NoError(t, err)
		assert.True(t, delivered)
	})
}
