package session

import "testing"

// pcmOfDuration builds a recognizable non-zero payload covering the given
// number of seconds at the playback rate.
func pcmOfDuration(seconds float64) []byte {
	pcm := make([]byte, int(seconds*24000)*2)
	for i := range pcm {
		pcm[i] = byte(i%255) + 1
	}
	return pcm
}

func TestEnqueueSchedulesChunksBackToBack(t *testing.T) {
	s := newPlaybackScheduler()

	durations := []float64{0.1, 0.25, 0.05}
	expectedStart := 0.0
	for _, duration := range durations {
		start, got := s.Enqueue(pcmOfDuration(duration))
		if got != duration {
			t.Fatalf("expected computed duration %f, got %f", duration, got)
		}
		if start != expectedStart {
			t.Fatalf("expected chunk to start at the sum of prior durations %f, got %f", expectedStart, start)
		}
		expectedStart += duration
	}

	if s.OutputClock() != expectedStart {
		t.Fatalf("expected output clock at %f, got %f", expectedStart, s.OutputClock())
	}
}

func TestEnqueueClampsToDeviceTimeWhenPlaybackFellBehind(t *testing.T) {
	s := newPlaybackScheduler()

	// A second of silence rendered with nothing scheduled leaves the
	// output clock in the past.
	s.Render(make([]byte, 24000*2))

	start, _ := s.Enqueue(pcmOfDuration(0.1))
	if start != 1.0 {
		t.Fatalf("expected late chunk to schedule from device time 1.0, got %f", start)
	}
	if s.OutputClock() < s.DeviceTime() {
		t.Fatalf("expected output clock %f to stay at or ahead of device time %f", s.OutputClock(), s.DeviceTime())
	}
}

func TestRenderCopiesScheduledAudioAndSilenceAcrossGaps(t *testing.T) {
	s := newPlaybackScheduler()

	// Force a scheduling gap of 0.5s before the only chunk.
	s.mu.Lock()
	s.outputClock = 0.5
	s.mu.Unlock()
	pcm := pcmOfDuration(0.25)
	s.Enqueue(pcm)

	out := make([]byte, 24000*2) // one second
	s.Render(out)

	gapBytes := 12000 * 2
	for i := range gapBytes {
		if out[i] != 0 {
			t.Fatalf("expected silence during the scheduling gap, got %d at byte %d", out[i], i)
		}
	}
	for i, expected := range pcm {
		if out[gapBytes+i] != expected {
			t.Fatalf("expected chunk byte %d at offset %d, got %d", expected, gapBytes+i, out[gapBytes+i])
		}
	}
	for i := gapBytes + len(pcm); i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("expected silence after the chunk, got %d at byte %d", out[i], i)
		}
	}

	if s.Pending() != 0 {
		t.Fatalf("expected the fully played entry to leave the live set, got %d pending", s.Pending())
	}
	if s.DeviceTime() != 1.0 {
		t.Fatalf("expected device time to advance by the full buffer, got %f", s.DeviceTime())
	}
}

func TestRenderContinuesPartialEntryAcrossCalls(t *testing.T) {
	s := newPlaybackScheduler()
	pcm := pcmOfDuration(0.2)
	s.Enqueue(pcm)

	first := make([]byte, 2400*2) // 0.1s
	second := make([]byte, 2400*2)
	s.Render(first)
	s.Render(second)

	for i := range first {
		if first[i] != pcm[i] {
			t.Fatalf("expected first half byte %d at %d, got %d", pcm[i], i, first[i])
		}
	}
	for i := range second {
		if second[i] != pcm[len(first)+i] {
			t.Fatalf("expected second half byte %d at %d, got %d", pcm[len(first)+i], i, second[i])
		}
	}
}

func TestInterruptClearsEntriesAndResetsClock(t *testing.T) {
	s := newPlaybackScheduler()
	s.Enqueue(pcmOfDuration(0.5))
	s.Enqueue(pcmOfDuration(0.5))

	s.Render(make([]byte, 2400*2)) // 0.1s played
	s.Interrupt()

	if s.Pending() != 0 {
		t.Fatalf("expected all entries cleared on interruption, got %d", s.Pending())
	}
	if s.OutputClock() != s.DeviceTime() {
		t.Fatalf("expected output clock reset to device time %f, got %f", s.DeviceTime(), s.OutputClock())
	}

	start, _ := s.Enqueue(pcmOfDuration(0.1))
	if start < s.DeviceTime() {
		t.Fatalf("expected post-interruption chunk to schedule at or after %f, got %f", s.DeviceTime(), start)
	}
}

func TestFlushIsIdempotent(t *testing.T) {
	s := newPlaybackScheduler()

	s.Flush()
	s.Enqueue(pcmOfDuration(0.1))
	s.Flush()
	s.Flush()

	if s.Pending() != 0 {
		t.Fatalf("expected nothing scheduled after flush, got %d", s.Pending())
	}
}

func TestEnqueueIgnoresEmptyChunk(t *testing.T) {
	s := newPlaybackScheduler()

	if start, duration := s.Enqueue(nil); start != 0 || duration != 0 {
		t.Fatalf("expected empty chunk to be ignored, got start %f duration %f", start, duration)
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no entries, got %d", s.Pending())
	}
}
