package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tomz197/points/internal/game"
)

// Client to server message types.
const (
	MsgStart      = "start"
	MsgClick      = "click"
	MsgToggleAuto = "toggle_auto"
	MsgSetCount   = "set_count"
	MsgDismiss    = "dismiss"
)

// Server to client message types.
const (
	MsgState    = "state"
	MsgShutdown = "shutdown"
	MsgError    = "error"
)

// Dialogs a dismiss message can close.
const (
	ModalWin  = "win"
	ModalLose = "lose"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrBadModal    = errors.New("modal must be win or lose")
)

// Text is free-form count input. The browser may send it as a JSON string or
// a bare number; either way the raw text is kept for ParseCount.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

// ClientMessage is a command sent by the browser.
type ClientMessage struct {
	Type   string `json:"type"`
	Count  Text   `json:"count,omitempty"`  // start
	Width  int    `json:"width,omitempty"`  // start
	Height int    `json:"height,omitempty"` // start
	Number int    `json:"number,omitempty"` // click
	Text   Text   `json:"text,omitempty"`   // set_count
	Modal  string `json:"modal,omitempty"`  // dismiss
}

// ServerMessage is pushed to the browser.
type ServerMessage struct {
	Type    string         `json:"type"`
	Data    *game.Snapshot `json:"data,omitempty"`
	Players int            `json:"players,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// decodeCommand parses and validates a browser frame.
func decodeCommand(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode message: %w", err)
	}
	switch msg.Type {
	case MsgStart, MsgClick, MsgToggleAuto, MsgSetCount:
	case MsgDismiss:
		if msg.Modal != ModalWin && msg.Modal != ModalLose {
			return msg, ErrBadModal
		}
	default:
		return msg, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// apply forwards a decoded command to the controller.
func apply(ctrl *game.Controller, msg ClientMessage) {
	switch msg.Type {
	case MsgStart:
		if msg.Count != "" {
			ctrl.SetRequestedCount(string(msg.Count))
		}
		ctrl.StartGame(ctrl.Snapshot().RequestedCount, game.Area{Width: msg.Width, Height: msg.Height})
	case MsgClick:
		ctrl.ClickMarker(msg.Number)
	case MsgToggleAuto:
		ctrl.ToggleAutoPlay()
	case MsgSetCount:
		ctrl.SetRequestedCount(string(msg.Text))
	case MsgDismiss:
		if msg.Modal == ModalWin {
			ctrl.DismissWinModal()
		} else {
			ctrl.DismissLoseModal()
		}
	}
}

func encode(msg ServerMessage) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msg.Type, err)
	}
	return b, nil
}
