package session

import "testing"

func TestApplyDeltaAccumulatesFragmentsIntoOneTurn(t *testing.T) {
	started := []Turn{}
	updated := []Turn{}
	r := newTurnReconciler(
		func(turn Turn) { started = append(started, turn) },
		func(turn Turn) { updated = append(updated, turn) },
	)

	r.ApplyDelta(SpeakerUser, "Hel")
	r.ApplyDelta(SpeakerUser, "lo")

	if len(started) != 1 {
		t.Fatalf("expected exactly one turn to start, got %d", len(started))
	}
	if len(updated) != 1 {
		t.Fatalf("expected exactly one turn update, got %d", len(updated))
	}
	if updated[0].Text != "Hello" {
		t.Fatalf("expected accumulated text %q, got %q", "Hello", updated[0].Text)
	}
	if updated[0].ID != started[0].ID {
		t.Fatalf("expected update for the started turn %s, got %s", started[0].ID, updated[0].ID)
	}
}

func TestFragmentAfterCompletionStartsDistinctTurn(t *testing.T) {
	started := []Turn{}
	r := newTurnReconciler(func(turn Turn) { started = append(started, turn) }, nil)

	r.ApplyDelta(SpeakerUser, "first")
	r.CompleteTurn()
	r.ApplyDelta(SpeakerUser, "second")

	if len(started) != 2 {
		t.Fatalf("expected two distinct turns, got %d", len(started))
	}
	if started[0].ID == started[1].ID {
		t.Fatal("expected the post-completion fragment to start a new turn, got an append to the first")
	}
	if started[1].Text != "second" {
		t.Fatalf("expected fresh turn text %q, got %q", "second", started[1].Text)
	}
}

func TestChannelsInterleaveIndependently(t *testing.T) {
	r := newTurnReconciler(nil, nil)

	r.ApplyDelta(SpeakerUser, "question")
	r.ApplyDelta(SpeakerModel, "answer ")
	r.ApplyDelta(SpeakerModel, "continued")

	userTurn, ok := r.ActiveTurn(SpeakerUser)
	if !ok || userTurn.Text != "question" {
		t.Fatalf("expected active user turn %q, got %q (active: %t)", "question", userTurn.Text, ok)
	}
	modelTurn, ok := r.ActiveTurn(SpeakerModel)
	if !ok || modelTurn.Text != "answer continued" {
		t.Fatalf("expected active model turn %q, got %q (active: %t)", "answer continued", modelTurn.Text, ok)
	}
}

func TestCompleteTurnFinalisesAndClearsBothChannels(t *testing.T) {
	updated := []Turn{}
	r := newTurnReconciler(nil, func(turn Turn) { updated = append(updated, turn) })

	r.ApplyDelta(SpeakerUser, "hi")
	r.ApplyDelta(SpeakerModel, "hello")
	finalised := r.CompleteTurn()

	if len(finalised) != 2 {
		t.Fatalf("expected both channels finalised, got %d turns", len(finalised))
	}
	for _, turn := range finalised {
		if !turn.Final {
			t.Fatalf("expected %s turn to be final", turn.Speaker)
		}
	}
	if len(updated) != 2 {
		t.Fatalf("expected final state of both turns to be published, got %d updates", len(updated))
	}
	if _, ok := r.ActiveTurn(SpeakerUser); ok {
		t.Fatal("expected no active user turn after completion")
	}
	if _, ok := r.ActiveTurn(SpeakerModel); ok {
		t.Fatal("expected no active model turn after completion")
	}
}

func TestCompleteTurnWithNothingActiveIsHarmless(t *testing.T) {
	r := newTurnReconciler(nil, nil)

	if finalised := r.CompleteTurn(); len(finalised) != 0 {
		t.Fatalf("expected no finalised turns, got %d", len(finalised))
	}
}

func TestResetClearsWithoutPublishing(t *testing.T) {
	updated := 0
	r := newTurnReconciler(nil, func(Turn) { updated++ })

	r.ApplyDelta(SpeakerModel, "cut off")
	updated = 0
	r.Reset()

	if updated != 0 {
		t.Fatalf("expected no publications on reset, got %d", updated)
	}
	if _, ok := r.ActiveTurn(SpeakerModel); ok {
		t.Fatal("expected no active turn after reset")
	}
}
