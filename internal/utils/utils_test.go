package utils

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{-time.Second, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{4200 * time.Millisecond, "4.2s"},
		{59990 * time.Millisecond, "59.9s"},
		{42 * time.Second, "42.0s"},
		{3*time.Minute + 7*time.Second + 900*time.Millisecond, "3m07s"},
		{2*time.Hour + 5*time.Minute + 30*time.Second, "2h05m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestPrintErr(t *testing.T) {
	var buf bytes.Buffer
	prev := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = prev })

	PrintErr("error: %v", os.ErrNotExist)
	PrintErr("")
	PrintErr("%d profile(s) were not persisted\n", 3)
	assert.Equal(t, "error: file does not exist\n3 profile(s) were not persisted\n", buf.String())
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
	require.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}

func TestSignalContextCancelsOnSignal(t *testing.T) {
	got := make(chan string, 1)
	ctx, cancel := SignalContext(context.Background(), func(sig os.Signal) { got <- sig.String() })
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
	assert.Equal(t, syscall.SIGTERM.String(), <-got)
}

func TestSignalContextCancelFunc(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), nil)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
