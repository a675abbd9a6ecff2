// Package bridge is the message boundary between the player and its host.
// It turns inbound commands into loader requests and reports results back.
// Failures are logged here and never crossed over to the host.
package bridge

import (
	"errors"
	"time"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

// Host receives outbound messages.
type Host interface {
	Send(msg []byte) error
}

// HostFunc adapts a plain function.
type HostFunc func([]byte) error

func (f HostFunc) Send(msg []byte) error { return f(msg) }

// Sequencer is the part of the loader the bridge drives.
type Sequencer interface {
	Load(style, word string) uint64
	Latest() (loader.Request, bool)
	Status() loader.Status
}

type Options struct {
	Commands     Commands
	DefaultStyle string
	DefaultWord  string
	Now          func() time.Time
	Logger       *game_log.Logger
}

type Bridge struct {
	host   Host
	seq    Sequencer
	cmds   Commands
	style  string
	word   string
	now    func() time.Time
	logger *game_log.Logger

	announced bool
	closed    bool
	results   int
	// outbox holds messages the host could not take yet, oldest first.
	outbox [][]byte

	// OnCommand, when set, sees every decoded command before it is applied.
	OnCommand func(Command)
}

func New(host Host, seq Sequencer, opts Options) *Bridge {
	cmds := opts.Commands
	def := DefaultCommands()
	if cmds.Content == "" {
		cmds.Content = def.Content
	}
	if cmds.Close == "" {
		cmds.Close = def.Close
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = game_log.Discard()
	}
	return &Bridge{
		host:   host,
		seq:    seq,
		cmds:   cmds,
		style:  opts.DefaultStyle,
		word:   opts.DefaultWord,
		now:    opts.Now,
		logger: opts.Logger,
	}
}

func (b *Bridge) Commands() Commands { return b.cmds }

// Closed reports whether the host has sent Close.
func (b *Bridge) Closed() bool { return b.closed }

// Results counts result messages sent.
func (b *Bridge) Results() int { return b.results }

// Waiting is true until the first content command triggers a load.
func (b *Bridge) Waiting() bool {
	_, ok := b.seq.Latest()
	return !ok
}

// Receive handles one inbound message. Malformed and unknown messages are
// dropped.
func (b *Bridge) Receive(msg []byte) {
	cmd, err := Decode(msg, b.cmds)
	if err != nil {
		if errors.Is(err, ErrUnknown) {
			b.logger.Debugf("[BRIDGE] ignoring %v", err)
		} else {
			b.logger.Debugf("[BRIDGE] dropping message: %v", err)
		}
		return
	}
	b.Apply(cmd)
}

// Apply executes a decoded command.
func (b *Bridge) Apply(cmd Command) {
	if b.OnCommand != nil {
		b.OnCommand(cmd)
	}
	switch c := cmd.(type) {
	case Close:
		b.closed = true
		b.logger.Infof("[BRIDGE] host closed the widget")
		b.sendResult(map[string]any{"success": false, "closed": true})
	case Content:
		b.content(c)
	}
}

func (b *Bridge) content(c Content) {
	style, word := b.style, b.word
	latest, requested := b.seq.Latest()
	if requested {
		style, word = latest.Style, latest.Word
	}
	if c.Style != "" {
		style = c.Style
	}
	if c.Word != "" {
		word = c.Word
	}
	switch {
	case !requested:
		b.logger.Infof("[BRIDGE] first content %s/%s", style, word)
	case style != latest.Style || word != latest.Word:
		b.logger.Infof("[BRIDGE] content changed to %s/%s", style, word)
	case b.seq.Status() == loader.StatusFailed:
		b.logger.Infof("[BRIDGE] retrying failed %s/%s", style, word)
	default:
		b.logger.Debugf("[BRIDGE] %s/%s already current", style, word)
		return
	}
	if style == "" || word == "" {
		b.logger.Warnf("[BRIDGE] content without style or word and no default; ignored")
		return
	}
	b.seq.Load(style, word)
}

// maxOutbox bounds messages held while the host is unreachable.
const maxOutbox = 32

// Announce sends {"cmd":"ready"} once. If the host cannot take it yet the
// message waits in the outbox for Flush.
func (b *Bridge) Announce() {
	if b.announced {
		return
	}
	b.announced = true
	b.send(EncodeReady())
}

// Pending counts messages waiting for the host.
func (b *Bridge) Pending() int { return len(b.outbox) }

// Flush retries held messages in order and stops at the first failure.
// Transports call it when a channel to the host comes up.
func (b *Bridge) Flush() {
	for len(b.outbox) > 0 {
		if err := b.deliver(b.outbox[0]); err != nil {
			b.logger.Debugf("[BRIDGE] host still unreachable, %d held: %v", len(b.outbox), err)
			return
		}
		b.outbox[0] = nil
		b.outbox = b.outbox[1:]
	}
}

// Finish reports user completion: success and finished plus extra.
func (b *Bridge) Finish(extra map[string]any) {
	fields := map[string]any{"success": true, "finished": true}
	for k, v := range extra {
		fields[k] = v
	}
	b.sendResult(fields)
}

func (b *Bridge) sendResult(extra map[string]any) {
	r := Result{Timestamp: b.now(), Extra: extra}
	if req, ok := b.seq.Latest(); ok {
		r.Style, r.Word, r.Variant = req.Style, req.Word, req.Variant
	}
	msg, err := EncodeResult(r)
	if err != nil {
		b.logger.Errorf("[BRIDGE] %v", err)
		return
	}
	b.results++
	b.send(msg)
}

// send delivers msg behind anything already held, so the host sees
// messages in the order they were produced.
func (b *Bridge) send(msg []byte) {
	if b.host == nil {
		return
	}
	b.Flush()
	if len(b.outbox) == 0 {
		err := b.deliver(msg)
		if err == nil {
			return
		}
		b.logger.Warnf("[BRIDGE] send failed, holding message: %v", err)
	}
	if len(b.outbox) == maxOutbox {
		b.logger.Errorf("[BRIDGE] outbox full, dropping %s", b.outbox[0])
		b.outbox[0] = nil
		b.outbox = b.outbox[1:]
	}
	b.outbox = append(b.outbox, msg)
}

func (b *Bridge) deliver(msg []byte) error {
	if err := b.host.Send(msg); err != nil {
		return err
	}
	b.logger.Debugf("[BRIDGE] sent %s", msg)
	return nil
}
