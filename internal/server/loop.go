package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gridlife/internal/control"
)

// ErrStopped is returned by Do and View once the loop has exited.
var ErrStopped = errors.New("server loop stopped")

type command struct {
	fn      func(*control.Controller) error
	publish bool
	done    chan error
}

// Loop is the only goroutine that touches the controller. Generations run on
// a ticker at the controller's rate; HTTP handlers submit commands through
// Do and View.
type Loop struct {
	ctrl    *control.Controller
	hub     *Hub
	cmds    chan command
	stopped chan struct{}
	log     *slog.Logger
	// seq numbers published frames; loop goroutine only.
	seq uint64
}

// NewLoop creates a loop around ctrl. hub may be nil.
func NewLoop(ctrl *control.Controller, hub *Hub, logger *slog.Logger) *Loop {
	return &Loop{
		ctrl:    ctrl,
		hub:     hub,
		cmds:    make(chan command),
		stopped: make(chan struct{}),
		log:     logger,
	}
}

// Run advances the board and serves commands until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	interval := l.ctrl.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.log.Info("generation loop started", "rate", l.ctrl.Rate())
	for {
		select {
		case <-ctx.Done():
			st := l.ctrl.Status()
			l.log.Info("generation loop stopped", "generation", st.Generation, "population", st.Population)
			return
		case <-ticker.C:
			if l.ctrl.Advance() {
				l.publish("generation")
			}
		case cmd := <-l.cmds:
			err := cmd.fn(l.ctrl)
			cmd.done <- err
			if err == nil && cmd.publish {
				l.publish("update")
			}
			if next := l.ctrl.Interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// Do runs fn on the loop goroutine and broadcasts the board if fn succeeds.
func (l *Loop) Do(ctx context.Context, fn func(*control.Controller) error) error {
	return l.exec(ctx, fn, true)
}

// View runs fn on the loop goroutine without broadcasting.
func (l *Loop) View(ctx context.Context, fn func(*control.Controller) error) error {
	return l.exec(ctx, fn, false)
}

// Subscribe captures the current board and hands it to join on the loop
// goroutine, so no generation can be published between the two.
func (l *Loop) Subscribe(ctx context.Context, join func(initial Message) error) error {
	return l.View(ctx, func(*control.Controller) error {
		return join(l.message("board"))
	})
}

func (l *Loop) exec(ctx context.Context, fn func(*control.Controller) error, publish bool) error {
	cmd := command{fn: fn, publish: publish, done: make(chan error, 1)}
	select {
	case l.cmds <- cmd:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// The command is accepted and will run; report its real outcome.
	return <-cmd.done
}

func (l *Loop) publish(event string) {
	if l.hub == nil {
		return
	}
	l.seq++
	l.hub.Publish(l.message(event))
}

func (l *Loop) message(event string) Message {
	return Message{Seq: l.seq, Event: event, Status: l.ctrl.Status(), Board: l.ctrl.Snapshot()}
}
