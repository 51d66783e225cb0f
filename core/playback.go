package session

import (
	"sync"

	"github.com/meeshareey/voice-core/core/audio"
)

// playbackEntry is one scheduled unit of inbound audio. Owned by the
// scheduler from enqueue until playback completion or a forced stop.
type playbackEntry struct {
	pcm         []byte
	startOffset float64
	duration    float64

	// cursor tracks consumed bytes while the entry is being rendered.
	cursor int
}

func (e *playbackEntry) done() bool { return e.cursor >= len(e.pcm) }

// playbackScheduler converts inbound PCM chunks into gapless output
// against the session's output clock.
//
// The device clock is derived from the frames the output device has pulled
// through Render, so the two timelines share one mutex: enqueue offsets can
// never overlap and never fall behind real time (chunks play back-to-back
// under normal delivery and leave a brief gap, never an overlap, when the
// network falls behind).
type playbackScheduler struct {
	mu sync.Mutex

	encoding audio.EncodingInfo

	// entries holds scheduled and playing audio in strict arrival order.
	entries []*playbackEntry
	// outputClock is the next free start offset in seconds.
	outputClock float64
	// renderedFrames is the device clock: frames pulled since creation.
	renderedFrames int64
}

func newPlaybackScheduler() *playbackScheduler {
	return &playbackScheduler{encoding: audio.GetPlaybackEncodingInfo()}
}

// DeviceTime returns the output device clock in seconds.
func (s *playbackScheduler) DeviceTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceTimeLocked()
}

// OutputClock returns the next free start offset in seconds.
func (s *playbackScheduler) OutputClock() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputClock
}

// Pending reports how many entries are scheduled or playing.
func (s *playbackScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *playbackScheduler) deviceTimeLocked() float64 {
	return float64(s.renderedFrames) / float64(s.encoding.SampleRate)
}

// Enqueue schedules a decoded chunk at max(outputClock, device time) and
// advances the output clock past it. Returns the computed start offset and
// duration.
func (s *playbackScheduler) Enqueue(pcm []byte) (startOffset, duration float64) {
	if len(pcm) == 0 {
		return 0, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	samples := len(pcm) / s.encoding.Format.ByteSize()
	duration = float64(samples) / float64(s.encoding.SampleRate)

	startOffset = s.outputClock
	if now := s.deviceTimeLocked(); now > startOffset {
		startOffset = now
	}

	s.entries = append(s.entries, &playbackEntry{
		pcm:         pcm,
		startOffset: startOffset,
		duration:    duration,
	})
	s.outputClock = startOffset + duration
	return startOffset, duration
}

// Render fills the output device buffer with 16-bit mono frames at the
// playback rate: silence across scheduling gaps, entry bytes back-to-back
// otherwise. Completed entries leave the live set. Advances the device
// clock by the full buffer regardless of how much audio was available.
func (s *playbackScheduler) Render(out []byte) {
	for i := range out {
		out[i] = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bytesPerFrame := s.encoding.Format.ByteSize()
	frames := int64(len(out) / bytesPerFrame)
	rate := float64(s.encoding.SampleRate)

	pos := 0
	for pos < len(out) && len(s.entries) > 0 {
		entry := s.entries[0]

		if entry.cursor == 0 {
			startFrame := int64(entry.startOffset*rate + 0.5)
			gap := startFrame - (s.renderedFrames + int64(pos/bytesPerFrame))
			if gap > 0 {
				skip := int(gap) * bytesPerFrame
				if skip > len(out)-pos {
					break
				}
				pos += skip
			}
		}

		n := copy(out[pos:], entry.pcm[entry.cursor:])
		entry.cursor += n
		pos += n
		if entry.done() {
			s.entries = s.entries[1:]
		}
	}

	s.renderedFrames += frames
}

// Interrupt stops every scheduled or playing entry, clears the live set and
// resets the output clock to the device's current time, so subsequent
// chunks schedule fresh from now. Idempotent.
func (s *playbackScheduler) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.outputClock = s.deviceTimeLocked()
}

// Flush is the unconditional session-stop variant of Interrupt.
func (s *playbackScheduler) Flush() { s.Interrupt() }
