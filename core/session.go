// Package session implements the live voice session engine: one
// bidirectional connection to a remote conversational service, fed by a
// microphone capture pipeline and drained into a gapless playback
// scheduler, with incremental transcripts reconciled into discrete turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/meeshareey/voice-core/core/audio"
	"github.com/meeshareey/voice-core/core/transport"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateClosing    State = "closing"
	StateClosed     State = "closed"
	StateErrored    State = "errored"
)

// Session is one live voice session. It is the sole owner of lifecycle
// transitions; the capture pipeline, playback scheduler and turn reconciler
// only process data while the session is active.
//
// A session is single-shot: once closed or errored it can be started again
// only by an explicit new Start call. No automatic reconnection is
// performed.
type Session struct {
	mu    sync.Mutex
	state State
	// epoch invalidates in-flight device and transport callbacks across
	// stop/start boundaries, so a pending connection attempt completing
	// after stop is discarded rather than acted upon.
	epoch uint64

	transport transport.Client
	input     AudioInput
	output    AudioOutput

	capture  *capturePipeline
	playback *playbackScheduler
	turns    *turnReconciler

	voice             string
	model             string
	systemInstruction string
	primingMessage    string

	onTurnStarted func(Turn)
	onTurnUpdated func(Turn)
	onError       func(err error)

	baseContext context.Context
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state:       StateIdle,
		baseContext: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.playback = newPlaybackScheduler()
	s.turns = newTurnReconciler(
		func(turn Turn) {
			if s.onTurnStarted != nil {
				s.onTurnStarted(turn)
			}
		},
		func(turn Turn) {
			if s.onTurnUpdated != nil {
				s.onTurnUpdated(turn)
			}
		},
	)
	s.capture = newCapturePipeline(s.input, s.sendChunk)

	return s
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsActive reports whether the session is live.
func (s *Session) IsActive() bool { return s.State() == StateActive }

// Start opens the audio devices and the transport connection, then begins
// routing capture audio outbound and inbound events to the turn reconciler
// and playback scheduler.
//
// Starting while a session is live is rejected with ErrSessionActive; the
// caller must stop first. A device acquisition failure returns a
// PermissionError and leaves the session idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateIdle, StateClosed, StateErrored:
	default:
		s.mu.Unlock()
		return ErrSessionActive
	}
	if s.transport == nil {
		s.mu.Unlock()
		return ErrNoTransport
	}
	if s.input == nil || s.output == nil {
		s.mu.Unlock()
		return ErrNoAudioDevice
	}
	s.state = StateConnecting
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	ctx, span := tracer.Start(ctx, "start live session")
	defer span.End()

	s.mu.Lock()
	s.baseContext = ctx
	s.mu.Unlock()

	if err := s.input.OpenCapture(ctx); err != nil {
		permissionErr := &PermissionError{Err: err}
		span.RecordError(permissionErr)
		span.SetStatus(codes.Error, permissionErr.Error())
		s.setState(epoch, StateIdle)
		return permissionErr
	}

	if err := s.output.OpenPlayback(ctx, s.playback.Render); err != nil {
		if closeErr := s.input.CloseCapture(); closeErr != nil {
			span.RecordError(closeErr)
		}
		permissionErr := &PermissionError{Err: err}
		span.RecordError(permissionErr)
		span.SetStatus(codes.Error, permissionErr.Error())
		s.setState(epoch, StateIdle)
		return permissionErr
	}

	connectOpts := []transport.ConnectOption{
		transport.WithOpenCallback(func() { s.handleOpen(epoch) }),
		transport.WithMessageCallback(func(message transport.ServerMessage) { s.handleMessage(epoch, message) }),
		transport.WithErrorCallback(func(err error) { s.handleTransportError(epoch, err) }),
		transport.WithCloseCallback(func(error) { s.handleTransportClose(epoch) }),
	}
	if s.voice != "" {
		connectOpts = append(connectOpts, transport.WithVoice(s.voice))
	}
	if s.model != "" {
		connectOpts = append(connectOpts, transport.WithModel(s.model))
	}
	if s.systemInstruction != "" {
		connectOpts = append(connectOpts, transport.WithSystemInstruction(s.systemInstruction))
	}

	if err := s.transport.Connect(ctx, connectOpts...); err != nil {
		if s.stale(epoch) {
			// Stop raced the connection attempt; teardown already ran.
			return nil
		}
		s.shutdown(epoch, StateErrored)
		connectErr := fmt.Errorf("failed to open live connection: %w", err)
		span.RecordError(connectErr)
		span.SetStatus(codes.Error, connectErr.Error())
		return connectErr
	}

	if s.stale(epoch) {
		// Stop landed while the connection was being negotiated; discard
		// the completed connection instead of acting on it.
		_ = s.transport.Close()
	}
	return nil
}

// Stop tears the session down. Safe to invoke from any state, multiple
// times, and concurrently with a pending start.
func (s *Session) Stop() {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.shutdown(epoch, StateClosed)
}

// shutdown is the single idempotent teardown routine every stop, close and
// error path converges on, so device handles are released exactly once.
// Reports whether this call performed the teardown; a stale epoch or an
// already-final state leaves everything untouched.
func (s *Session) shutdown(epoch uint64, final State) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	switch s.state {
	case StateIdle, StateClosing, StateClosed, StateErrored:
		s.mu.Unlock()
		return false
	}
	s.state = StateClosing
	s.epoch++
	ctx := s.baseContext
	s.mu.Unlock()

	var errs error
	if err := s.capture.Stop(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to stop audio capture: %w", err))
	}
	s.playback.Flush()
	if err := s.input.CloseCapture(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to release input device: %w", err))
	}
	if err := s.output.ClosePlayback(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to release output device: %w", err))
	}
	if err := s.transport.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to close transport: %w", err))
	}
	s.turns.Reset()

	s.mu.Lock()
	s.state = final
	s.mu.Unlock()

	if errs != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(errs)
		span.SetStatus(codes.Error, errs.Error())
	}
	return true
}

// handleOpen transitions to active once the transport acknowledges the
// connection: the priming message is sent exactly once and device audio
// begins routing through the capture pipeline.
func (s *Session) handleOpen(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.state != StateConnecting {
		s.mu.Unlock()
		return
	}
	s.state = StateActive
	ctx := s.baseContext
	s.mu.Unlock()

	if s.primingMessage != "" {
		if err := s.transport.SendText(s.primingMessage); err != nil {
			logger.Warn("failed to send priming message", "error", err)
		}
	}

	if err := s.capture.Start(ctx); err != nil {
		recordedErr := fmt.Errorf("failed to start audio capture: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
	}
}

// handleMessage dispatches one inbound event. Events arrive in strict
// delivery order on the transport's stream, independent of the capture
// stream.
func (s *Session) handleMessage(epoch uint64, message transport.ServerMessage) {
	s.mu.Lock()
	if epoch != s.epoch || s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if message.UserTranscript != "" {
		s.turns.ApplyDelta(SpeakerUser, message.UserTranscript)
	}
	if message.ModelTranscript != "" {
		s.turns.ApplyDelta(SpeakerModel, message.ModelTranscript)
	}
	if message.TurnComplete {
		s.turns.CompleteTurn()
	}

	if message.HasAudio() {
		s.scheduleAudio(message)
	}

	if message.Interrupted {
		s.playback.Interrupt()
	}
}

// scheduleAudio decodes one inbound chunk for playback. Malformed payloads
// are dropped and logged; a decode failure never escalates to session
// teardown.
func (s *Session) scheduleAudio(message transport.ServerMessage) {
	pcm, err := audio.DecodeBytes(message.AudioData)
	if err != nil {
		logger.Warn("dropping undecodable inbound audio chunk", "error", err)
		return
	}
	if len(pcm)%2 != 0 {
		logger.Warn("dropping malformed inbound audio chunk", "error", audio.ErrMalformedPCM)
		return
	}

	s.playback.Enqueue(pcm)
}

func (s *Session) handleTransportError(epoch uint64, err error) {
	if !s.shutdown(epoch, StateErrored) {
		// The error arrived for a stale connection; nothing to surface.
		return
	}

	surfaced := fmt.Errorf("live session failed: %w", err)
	logger.Error("live session transport error", "error", err)
	if s.onError != nil {
		s.onError(surfaced)
	}
}

func (s *Session) handleTransportClose(epoch uint64) {
	s.shutdown(epoch, StateClosed)
}

// sendChunk is the capture pipeline's outbound sink. Delivery is
// fire-and-forget per frame; a slow transport drops chunks instead of
// building a backlog.
func (s *Session) sendChunk(mimeType string, pcm []byte) {
	if !s.IsActive() {
		return
	}
	if err := s.transport.SendAudio(mimeType, pcm); err != nil {
		logger.Warn("dropping outbound audio chunk", "error", err)
	}
}

func (s *Session) setState(epoch uint64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.state = state
}

func (s *Session) stale(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch != s.epoch
}
