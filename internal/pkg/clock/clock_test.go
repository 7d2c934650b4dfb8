package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	// Arrange
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewFixed(start)

	// Act
	c.Advance(10 * time.Minute)

	// Assert
	if got := c.Now(); !got.Equal(start.Add(10 * time.Minute)) {
		t.Fatalf("Now() = %v, want %v", got, start.Add(10*time.Minute))
	}

	c.Set(start)
	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() after Set = %v, want %v", got, start)
	}
}
