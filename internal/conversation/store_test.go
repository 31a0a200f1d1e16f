package conversation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("new sessions start idle", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		require.Equal(t, Idle{}, s.Peek(1))
	})

	t.Run("idle sessions are dropped on release", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		turn := s.Acquire(1)
		turn.Set(AwaitingExpense{})
		turn.Release()
		require.Equal(t, 1, s.size())

		turn = s.Acquire(1)
		turn.Set(Idle{})
		turn.Release()
		require.Zero(t, s.size())

		require.Equal(t, Idle{}, s.Peek(2))
		require.Zero(t, s.size())
	})

	t.Run("session with a waiting turn is kept", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		first := s.Acquire(5)
		done := make(chan struct{})
		go func() {
			defer close(done)
			second := s.Acquire(5)
			second.Set(AwaitingBudget{})
			second.Release()
		}()

		require.Eventually(t, func() bool {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.sessions[5].refs == 2
		}, time.Second, time.Millisecond)

		first.Release()
		<-done
		require.Equal(t, AwaitingBudget{}, s.Peek(5))
	})

	t.Run("state persists between turns", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		turn := s.Acquire(42)
		turn.Set(AwaitingBudget{})
		turn.Release()

		require.Equal(t, AwaitingBudget{}, s.Peek(42))
		require.Equal(t, Idle{}, s.Peek(43))
	})

	t.Run("nil state resets to idle", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		turn := s.Acquire(1)
		turn.Set(nil)
		require.Equal(t, Idle{}, turn.State())
		turn.Release()
		turn.Release()
	})

	t.Run("turns for one chat are serialized", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		first := s.Acquire(7)
		acquired := make(chan struct{})
		go func() {
			second := s.Acquire(7)
			defer second.Release()
			close(acquired)
		}()

		select {
		case <-acquired:
			t.Fatal("second turn acquired the session while the first held it")
		case <-time.After(50 * time.Millisecond):
		}

		first.Release()
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("second turn never acquired the session")
		}
	})

	t.Run("different chats do not block each other", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		held := s.Acquire(1)
		defer held.Release()

		done := make(chan struct{})
		go func() {
			other := s.Acquire(2)
			other.Release()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("other chat was blocked")
		}
	})

	t.Run("concurrent turns do not lose updates", func(t *testing.T) {
		t.Parallel()
		s := NewStore()

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				turn := s.Acquire(9)
				defer turn.Release()
				st, ok := turn.State().(ConfirmReset)
				if !ok {
					turn.Set(ConfirmReset{Step: 1})
					return
				}
				turn.Set(ConfirmReset{Step: st.Step + 1})
			}()
		}
		wg.Wait()

		require.Equal(t, ConfirmReset{Step: 50}, s.Peek(9))
	})
}
