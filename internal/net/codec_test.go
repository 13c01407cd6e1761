package net

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/peterkuimelis/elementa/internal/game"
)

func TestPlayCardWireShape(t *testing.T) {
	ev := game.PlayCard{Player: 1, Card: game.CardRef{ID: "abc", Type: game.Luz, Level: 1}, Slot: 4}
	data, err := MarshalEvent(ev, 2)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["type"] != "play_card" || raw["actor"] != float64(1) || raw["fieldIndex"] != float64(4) || raw["epoch"] != float64(2) {
		t.Errorf("wire form %s", data)
	}
	card, _ := raw["card"].(map[string]any)
	if card["type"] != "Luz" || card["id"] != "abc" {
		t.Errorf("card %v", card)
	}

	p, err := UnmarshalPayload(data)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeEvent(p)
	if err != nil {
		t.Fatal(err)
	}
	if back != ev {
		t.Errorf("decoded %#v, want %#v", back, ev)
	}
}

func TestDirectAttackKeepsDirectFlag(t *testing.T) {
	ev := game.Attack{Player: 0, AttackerSlot: 3, DefenderSlot: -1, Direct: true}
	p := EncodeEvent(ev, 0)
	if p.Type != EventDirectAttack {
		t.Fatalf("type %q", p.Type)
	}
	back, err := DecodeEvent(p)
	if err != nil {
		t.Fatal(err)
	}
	if back != ev {
		t.Errorf("decoded %#v", back)
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{`, ErrMalformedEvent},
		{"no type", `{"actor":0}`, ErrMalformedEvent},
		{"bad actor", `{"type":"pass","actor":5}`, ErrMalformedEvent},
		{"play without card", `{"type":"play_card","actor":0,"fieldIndex":1}`, ErrMalformedEvent},
		{"unknown kind", `{"type":"summon","actor":0}`, ErrUnknownMessage},
		{"bad card type", `{"type":"play_card","actor":0,"card":{"id":"x","type":"Metal","level":1}}`, ErrMalformedEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := UnmarshalPayload(json.RawMessage(tt.data))
			if err == nil {
				_, err = DecodeEvent(p)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTimedOutPass(t *testing.T) {
	data, _ := MarshalEvent(game.Pass{Player: 1, TimedOut: true}, 0)
	if !strings.Contains(string(data), `"timedOut":true`) {
		t.Errorf("wire form %s", data)
	}
}

func TestServerMessageKeepsFalseFlags(t *testing.T) {
	cases := []struct {
		msg  ServerMessage
		want string
	}{
		{Rejected(MsgJoinRoom, errors.New("room full")), `"success":false`},
		{Accepted(MsgCreateRoom, "123456", "host"), `"success":true`},
		{PlayerJoined(1, false), `"canStart":false`},
		{PlayerJoined(2, true), `"canStart":true`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.msg)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), tc.want) {
			t.Errorf("%s missing %s", data, tc.want)
		}
		var back ServerMessage
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatal(err)
		}
		if tc.msg.Success != nil && back.OK() != *tc.msg.Success {
			t.Errorf("%s decoded OK() = %v", data, back.OK())
		}
	}

	if (ServerMessage{Type: MsgJoinRoom}).OK() {
		t.Error("reply without success flag reported OK")
	}
}
