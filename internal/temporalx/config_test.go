package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClampBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, 1 * time.Second},
	}
	for _, tc := range cases {
		if got := ClampBackoff(100*time.Millisecond, time.Second, tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: got %v want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestIsRetryableRPC(t *testing.T) {
	if !IsRetryableRPC(status.Error(codes.Unavailable, "down")) {
		t.Fatalf("unavailable should retry")
	}
	if IsRetryableRPC(status.Error(codes.PermissionDenied, "no")) {
		t.Fatalf("permission denied should not retry")
	}
	if !IsRetryableRPC(context.DeadlineExceeded) {
		t.Fatalf("deadline should retry")
	}
	if IsRetryableRPC(errors.New("boom")) || IsRetryableRPC(nil) {
		t.Fatalf("plain errors should not retry")
	}
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	c, err := NewClient(Config{}, nil)
	if err != nil || c != nil {
		t.Fatalf("expected nil client and nil error, got %v %v", c, err)
	}
}
