package game

// SetElapsed lets tests park the timer just below the cap.
func SetElapsed(t *Timer, seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = seconds
}
