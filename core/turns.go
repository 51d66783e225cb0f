package session

import (
	"sync"

	"github.com/google/uuid"
)

// Speaker identifies which side of the conversation a turn belongs to.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// Turn is one contiguous span of speech from one speaker within an
// exchange. Text is append-only until the turn is finalised; a finalised
// turn is an immutable record.
type Turn struct {
	ID      string
	Speaker Speaker
	Text    string
	Final   bool
}

// turnReconciler folds streamed transcript deltas into stable turns for the
// two channels that may interleave within one exchange.
//
// Fragments are trusted as authoritative in arrival order: nothing is
// truncated, reordered or deduplicated.
type turnReconciler struct {
	mu     sync.Mutex
	active map[Speaker]*Turn

	onTurnStarted func(Turn)
	onTurnUpdated func(Turn)
}

func newTurnReconciler(onTurnStarted, onTurnUpdated func(Turn)) *turnReconciler {
	return &turnReconciler{
		active:        map[Speaker]*Turn{},
		onTurnStarted: onTurnStarted,
		onTurnUpdated: onTurnUpdated,
	}
}

// ApplyDelta appends a transcript fragment to the speaker's active turn,
// starting (and publishing) a fresh turn when none is active. A fragment
// arriving after turn completion therefore begins a new turn, even for the
// same speaker.
func (r *turnReconciler) ApplyDelta(speaker Speaker, delta string) Turn {
	r.mu.Lock()

	turn, ok := r.active[speaker]
	if !ok {
		turn = &Turn{ID: uuid.NewString(), Speaker: speaker, Text: delta}
		r.active[speaker] = turn
		snapshot := *turn
		r.mu.Unlock()

		if r.onTurnStarted != nil {
			r.onTurnStarted(snapshot)
		}
		return snapshot
	}

	turn.Text += delta
	snapshot := *turn
	r.mu.Unlock()

	if r.onTurnUpdated != nil {
		r.onTurnUpdated(snapshot)
	}
	return snapshot
}

// ActiveTurn returns a point-in-time copy of the speaker's active turn.
func (r *turnReconciler) ActiveTurn(speaker Speaker) (Turn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	turn, ok := r.active[speaker]
	if !ok {
		return Turn{}, false
	}
	return *turn, true
}

// CompleteTurn ends the current exchange: both channels' active turns are
// finalised, published one last time and cleared. Returns the finalised
// turns, user first.
func (r *turnReconciler) CompleteTurn() []Turn {
	r.mu.Lock()
	finalised := make([]Turn, 0, 2)
	for _, speaker := range []Speaker{SpeakerUser, SpeakerModel} {
		if turn, ok := r.active[speaker]; ok {
			turn.Final = true
			finalised = append(finalised, *turn)
			delete(r.active, speaker)
		}
	}
	r.mu.Unlock()

	if r.onTurnUpdated != nil {
		for _, turn := range finalised {
			r.onTurnUpdated(turn)
		}
	}
	return finalised
}

// Reset drops active-turn state without publishing, used on session
// teardown.
func (r *turnReconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = map[Speaker]*Turn{}
}
