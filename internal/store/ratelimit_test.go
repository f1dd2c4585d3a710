package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeCounter) CountQueriesToday(ctx context.Context, telegramID, queryType string) (int, error) {
	f.calls++
	return f.count, f.err
}

func TestCanMakeQuery(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		countErr    error
		telegramID  string
		adminID     string
		wantAllowed bool
		wantDenial  bool
	}{
		{
			name:        "under the cap",
			count:       2,
			telegramID:  "100",
			wantAllowed: true,
		},
		{
			name:        "at the cap",
			count:       3,
			telegramID:  "100",
			wantAllowed: false,
			wantDenial:  true,
		},
		{
			name:        "over the cap",
			count:       7,
			telegramID:  "100",
			wantAllowed: false,
			wantDenial:  true,
		},
		{
			name:        "admin bypasses regardless of count",
			count:       99,
			telegramID:  "42",
			adminID:     "42",
			wantAllowed: true,
		},
		{
			name:        "count failure fails open",
			countErr:    fmt.Errorf("connection refused"),
			telegramID:  "100",
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &fakeCounter{count: tt.count, err: tt.countErr}
			limiter := NewLimiter(counter, tt.adminID, 3)

			allowed, denial := limiter.CanMakeQuery(context.Background(), tt.telegramID)

			assert.Equal(t, tt.wantAllowed, allowed)
			if tt.wantDenial {
				assert.Contains(t, denial, "3 búsquedas")
			} else {
				assert.Empty(t, denial)
			}
		})
	}
}

func TestAdminBypassSkipsCount(t *testing.T) {
	counter := &fakeCounter{count: 0}
	limiter := NewLimiter(counter, "42", 3)

	allowed, denial := limiter.CanMakeQuery(context.Background(), "42")

	assert.True(t, allowed)
	assert.Empty(t, denial)
	assert.Zero(t, counter.calls, "admin check must not hit the store")
}
