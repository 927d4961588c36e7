package server

import (
	"errors"
	"testing"

	"motiontrainer/motion"
)

func TestParseClientMessage(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"keys","codes":["ArrowLeft","KeyJ",3]}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != MsgKeys || len(msg.Codes) != 2 || msg.Codes[1] != "KeyJ" {
		t.Fatalf("keys = %+v", msg)
	}

	msg, err = ParseClientMessage([]byte(`{"type":"gamepad","connected":true,"buttons":[true,{"pressed":false},{"pressed":true}],"axes":[0,0.5,-0.714]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !msg.Connected || len(msg.Pad.Buttons) != 3 || !msg.Pad.Buttons[0] || msg.Pad.Buttons[1] || !msg.Pad.Buttons[2] {
		t.Fatalf("gamepad buttons = %+v", msg.Pad.Buttons)
	}
	if len(msg.Pad.Axes) != 3 || msg.Pad.Axes[2] != -0.714 {
		t.Fatalf("gamepad axes = %v", msg.Pad.Axes)
	}

	msg, err = ParseClientMessage([]byte(`{"type":"CONTROL","command":"Select","sequence":"ewgf"}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != MsgControl || msg.Command != CmdSelect || msg.Sequence != "ewgf" {
		t.Fatalf("control = %+v", msg)
	}
}

func TestParseClientMessageErrors(t *testing.T) {
	bad := []string{
		`not json`,
		`{"type":"keys"}`,
		`{"type":"keys","codes":"ArrowLeft"}`,
		`{"type":"control","command":"jump"}`,
		`{"type":"control","command":"select"}`,
		`{"type":"telemetry"}`,
		`{}`,
	}
	for _, p := range bad {
		if _, err := ParseClientMessage([]byte(p)); !errors.Is(err, errBadMessage) {
			t.Errorf("ParseClientMessage(%s) err = %v", p, err)
		}
	}
}

func TestRemoteInputFeedsSampler(t *testing.T) {
	in := &RemoteInput{}
	s := motion.NewSampler(in, in)
	if got := s.Sample(); got != (motion.KeyMap{}) {
		t.Fatalf("empty input sampled %v", got)
	}

	in.Apply(ClientMessage{Kind: MsgKeys, Codes: []string{"KeyS"}})
	axes := make([]float64, 10)
	axes[9] = 0.714
	in.Apply(ClientMessage{Kind: MsgGamepad, Connected: true, Pad: motion.GamepadSnapshot{Buttons: []bool{false, false, true}, Axes: axes}})
	if tok := motion.Translate(s.Sample()); tok != "db4" {
		t.Fatalf("Translate = %q, want db4", tok)
	}

	in.Apply(ClientMessage{Kind: MsgGamepad, Connected: false})
	if tok := motion.Translate(s.Sample()); tok != "d" {
		t.Fatalf("after disconnect Translate = %q, want d", tok)
	}
	if _, ok := in.Gamepad(1); ok {
		t.Fatal("slot 1 should never be connected")
	}
	if in.Apply(ClientMessage{Kind: MsgControl, Command: CmdStart}) {
		t.Fatal("control message applied as input")
	}
}
