package server

import (
	"net/http"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGracefulServer_StartAndShutdown(t *testing.T) {
	gs := New("127.0.0.1:0", okHandler(), time.Second, nil)

	done := make(chan error, 1)
	go func() { done <- gs.Start() }()

	// Give the listener time to come up.
	time.Sleep(100 * time.Millisecond)
	if gs.IsShuttingDown() {
		t.Error("Server should not report shutdown before Shutdown is called")
	}

	if err := gs.Shutdown(); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start should return nil after clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestGracefulServer_ShutdownChannel(t *testing.T) {
	gs := New("127.0.0.1:0", okHandler(), time.Second, nil)

	select {
	case <-gs.ShutdownChannel():
		t.Fatal("Channel should be open before shutdown")
	default:
	}

	gs.Shutdown()

	select {
	case <-gs.ShutdownChannel():
	case <-time.After(time.Second):
		t.Fatal("Channel should close on shutdown")
	}
	if !gs.IsShuttingDown() {
		t.Error("IsShuttingDown should be true after Shutdown")
	}
}

func TestGracefulServer_ShutdownIdempotent(t *testing.T) {
	gs := New("127.0.0.1:0", okHandler(), time.Second, nil)
	if err := gs.Shutdown(); err != nil {
		t.Errorf("First shutdown: %v", err)
	}
	if err := gs.Shutdown(); err != nil {
		t.Errorf("Second shutdown should be a no-op, got %v", err)
	}
}
