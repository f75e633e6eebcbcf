package game

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dogloot/server/internal/world"
)

var ErrStopped = errors.New("game loop stopped")

type joinReq struct {
	name  string
	mapID world.MapID
	reply chan joinResp
}

type joinResp struct {
	token world.Token
	id    world.PlayerID
	err   error
}

type dirReq struct {
	token world.Token
	dir   world.Direction
	reply chan error
}

type tickReq struct {
	dt    time.Duration
	reply chan error
}

type viewReq struct {
	token world.Token
	reply chan viewResp
}

type viewResp struct {
	view WorldView
	err  error
}

type saveReq struct {
	reply chan error
}

// Loop is the single goroutine that owns a Game. Callers on any goroutine
// send it typed requests and wait for the reply. With a positive period an
// internal ticker advances the game by the real time elapsed between ticks;
// otherwise the game only moves on Tick.
type Loop struct {
	game   *Game
	period time.Duration
	log    *zap.Logger

	join chan joinReq
	dir  chan dirReq
	tick chan tickReq
	view chan viewReq
	save chan saveReq

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewLoop(g *Game, period time.Duration, log *zap.Logger) *Loop {
	return &Loop{
		game:   g,
		period: period,
		log:    log,
		join:   make(chan joinReq),
		dir:    make(chan dirReq),
		tick:   make(chan tickReq),
		view:   make(chan viewReq),
		save:   make(chan saveReq),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run serves requests until ctx is done or Stop is called. The request being
// handled always completes before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	var tickC <-chan time.Time
	if l.period > 0 {
		ticker := time.NewTicker(l.period)
		defer ticker.Stop()
		tickC = ticker.C
	}
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case req := <-l.join:
			var resp joinResp
			resp.err = l.guard("join", func() error {
				var err error
				resp.token, resp.id, err = l.game.Join(req.name, req.mapID)
				return err
			})
			req.reply <- resp
		case req := <-l.dir:
			req.reply <- l.guard("set direction", func() error {
				return l.game.SetDirection(req.token, req.dir)
			})
		case req := <-l.view:
			var resp viewResp
			resp.err = l.guard("view", func() error {
				var err error
				resp.view, err = l.game.View(req.token)
				return err
			})
			req.reply <- resp
		case req := <-l.save:
			req.reply <- l.guard("save", l.game.Save)
		case req := <-l.tick:
			req.reply <- l.guard("tick", func() error {
				l.game.Tick(req.dt)
				return nil
			})
		case now := <-tickC:
			dt := now.Sub(last)
			last = now
			if err := l.guard("tick", func() error {
				l.game.Tick(dt)
				return nil
			}); err != nil {
				l.log.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// Stop ends Run and waits for it to return.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// guard runs fn and turns a panic into an error so one bad request cannot
// take the loop down.
func (l *Loop) guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("game loop recovered panic",
				zap.String("op", op),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
	}()
	return fn()
}

func send[T any](ctx context.Context, l *Loop, ch chan<- T, req T) error {
	select {
	case ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

func await[T any](ctx context.Context, reply <-chan T) (T, error) {
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Join adds a player and returns its token and id.
func (l *Loop) Join(ctx context.Context, name string, mapID world.MapID) (world.Token, world.PlayerID, error) {
	req := joinReq{name: name, mapID: mapID, reply: make(chan joinResp, 1)}
	if err := send(ctx, l, l.join, req); err != nil {
		return "", 0, err
	}
	resp, err := await(ctx, req.reply)
	if err != nil {
		return "", 0, err
	}
	return resp.token, resp.id, resp.err
}

func (l *Loop) SetDirection(ctx context.Context, tok world.Token, dir world.Direction) error {
	req := dirReq{token: tok, dir: dir, reply: make(chan error, 1)}
	if err := send(ctx, l, l.dir, req); err != nil {
		return err
	}
	resp, err := await(ctx, req.reply)
	if err != nil {
		return err
	}
	return resp
}

// Tick advances the game by dt. Used when the loop has no ticker.
func (l *Loop) Tick(ctx context.Context, dt time.Duration) error {
	req := tickReq{dt: dt, reply: make(chan error, 1)}
	if err := send(ctx, l, l.tick, req); err != nil {
		return err
	}
	resp, err := await(ctx, req.reply)
	if err != nil {
		return err
	}
	return resp
}

func (l *Loop) View(ctx context.Context, tok world.Token) (WorldView, error) {
	req := viewReq{token: tok, reply: make(chan viewResp, 1)}
	if err := send(ctx, l, l.view, req); err != nil {
		return WorldView{}, err
	}
	resp, err := await(ctx, req.reply)
	if err != nil {
		return WorldView{}, err
	}
	return resp.view, resp.err
}

// Save writes a snapshot from inside the loop.
func (l *Loop) Save(ctx context.Context) error {
	req := saveReq{reply: make(chan error, 1)}
	if err := send(ctx, l, l.save, req); err != nil {
		return err
	}
	resp, err := await(ctx, req.reply)
	if err != nil {
		return err
	}
	return resp
}
