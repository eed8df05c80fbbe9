package websocket

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

type timeoutErr struct{ timeout bool }

func (e *timeoutErr) Error() string   { return "deadline exceeded" }
func (e *timeoutErr) Timeout() bool   { return e.timeout }
func (e *timeoutErr) Temporary() bool { return false }

func TestAuthReadErrorMessage(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantTimeout bool
	}{
		{"read deadline expired", &timeoutErr{timeout: true}, true},
		{"wrapped deadline expiry", fmt.Errorf("read: %w", &timeoutErr{timeout: true}), true},
		{"non-timeout net error", &timeoutErr{timeout: false}, false},
		{"peer hung up", io.ErrUnexpectedEOF, false},
		{"plain error", errors.New("connection reset by peer"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := authReadErrorMessage(tt.err)
			gotTimeout := strings.Contains(msg, "timeout")
			if gotTimeout != tt.wantTimeout {
				t.Errorf("authReadErrorMessage(%v) = %q, timeout wording = %v, want %v",
					tt.err, msg, gotTimeout, tt.wantTimeout)
			}
		})
	}
}
