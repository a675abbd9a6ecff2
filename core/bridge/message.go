package bridge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	ErrMalformed = errors.New("malformed message")
	ErrUnknown   = errors.New("unknown command")
)

// Commands names the inbound command values the host uses.
type Commands struct {
	Content string
	Close   string
}

func DefaultCommands() Commands {
	return Commands{Content: "py_btc_ai2_3_3", Close: "close"}
}

// Command is one decoded inbound message: Content or Close.
type Command interface {
	command()
}

// Content asks for a sequence. Empty fields mean "keep the current value".
type Content struct {
	Style string
	Word  string
}

type Close struct{}

func (Content) command() {}
func (Close) command()   {}

// Decode parses an inbound message.
func Decode(msg []byte, cmds Commands) (Command, error) {
	if !gjson.ValidBytes(msg) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	cmd := gjson.GetBytes(msg, "cmd")
	if cmd.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing cmd", ErrMalformed)
	}
	switch cmd.Str {
	case cmds.Close:
		return Close{}, nil
	case cmds.Content:
		content := gjson.GetBytes(msg, "content")
		if !content.IsObject() {
			return nil, fmt.Errorf("%w: %s without content object", ErrMalformed, cmd.Str)
		}
		return Content{
			Style: stringField(content, "style"),
			Word:  stringField(content, "word"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, cmd.Str)
	}
}

func stringField(obj gjson.Result, key string) string {
	v := obj.Get(escapeKey(key))
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}

// Result is the payload of an outbound result message.
type Result struct {
	Style     string
	Word      string
	Timestamp time.Time
	Variant   int // omitted when zero
	Extra     map[string]any
}

// EncodeReady returns {"cmd":"ready"}.
func EncodeReady() []byte {
	return []byte(`{"cmd":"ready"}`)
}

// EncodeResult returns {"cmd":"result","content":{...}}. Extra fields are
// written after the fixed ones in key order and may override them.
func EncodeResult(r Result) ([]byte, error) {
	out := []byte(`{"cmd":"result","content":{}}`)
	var err error
	set := func(key string, v any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, "content."+escapeKey(key), v)
	}
	set("style", r.Style)
	set("word", r.Word)
	set("timestamp", r.Timestamp.UnixMilli())
	if r.Variant > 0 {
		set("variant", r.Variant)
	}
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set(k, r.Extra[k])
	}
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return out, nil
}

// escapeKey makes a literal object key safe to use as a gjson/sjson path.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
