package runtimeinit

import "testing"

func TestInitIsIdempotent(t *testing.T) {
	// Init must be safe to call repeatedly and from multiple goroutines;
	// it should never panic even when no cgroup quota is present.
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			Init()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
