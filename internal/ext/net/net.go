// Package net is the "net" native extension: a minimal HTTP GET plus a
// WebSocket client, grounded on the dial/send/recv shape of the source
// runtime's network module (§4.12).
package net

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vellum/internal/errors"
	"vellum/internal/memory"
	"vellum/internal/object"
)

type wsHandle struct {
	memory.Refcounted
	conn   *websocket.Conn
	closed bool
}

var wsType = object.NewType("net.WebSocket", nil, nil)

func (h *wsHandle) header() *memory.Refcounted { return &h.Refcounted }
func (h *wsHandle) TypeOf() *object.Type        { return wsType }

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Register installs net.get/ws_dial/send/recv/close into m (§4.12).
func Register(m *object.Module) {
	m.Set("get", object.NewNativeFunction("net.get", "get(url)", builtinGet))
	m.Set("ws_dial", object.NewNativeFunction("net.ws_dial", "ws_dial(url)", builtinWSDial))
	m.Set("send", object.NewNativeFunction("net.send", "send(ws, msg)", builtinWSSend))
	m.Set("recv", object.NewNativeFunction("net.recv", "recv(ws)", builtinWSRecv))
	m.Set("close", object.NewNativeFunction("net.close", "close(ws)", builtinWSClose))
}

func asString(v object.Value, what string) (string, *errors.LangError) {
	s, ok := v.(*object.String)
	if !ok {
		return "", errors.New(errors.KindTypeError, "%s must be a string", what)
	}
	return s.String(), nil
}

func builtinGet(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "get() takes exactly one argument")
	}
	url, lerr := asString(args[0], "url")
	if lerr != nil {
		return nil, lerr
	}
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "fetching %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "reading response body from %s", url)
	}
	if resp.StatusCode >= 400 {
		return nil, errors.New(errors.KindIOError, "%s: HTTP %d", url, resp.StatusCode)
	}
	return object.NewString(string(body)), nil
}

func builtinWSDial(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "ws_dial() takes exactly one argument")
	}
	url, lerr := asString(args[0], "url")
	if lerr != nil {
		return nil, lerr
	}
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "connecting to %s", url)
	}
	return &wsHandle{Refcounted: memory.NewRefcounted(40), conn: conn}, nil
}

func asWS(v object.Value) (*wsHandle, *errors.LangError) {
	h, ok := v.(*wsHandle)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "expected a websocket connection")
	}
	if h.closed {
		return nil, errors.New(errors.KindIOError, "websocket connection is closed")
	}
	return h, nil
}

func builtinWSSend(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "send() takes exactly 2 arguments")
	}
	h, lerr := asWS(args[0])
	if lerr != nil {
		return nil, lerr
	}
	msg, lerr := asString(args[1], "message")
	if lerr != nil {
		return nil, lerr
	}
	if err := h.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "sending websocket message")
	}
	return object.None, nil
}

func builtinWSRecv(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "recv() takes exactly one argument")
	}
	h, lerr := asWS(args[0])
	if lerr != nil {
		return nil, lerr
	}
	_, data, err := h.conn.ReadMessage()
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "receiving websocket message")
	}
	return object.NewString(string(data)), nil
}

func builtinWSClose(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "close() takes exactly one argument")
	}
	h, ok := args[0].(*wsHandle)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "expected a websocket connection")
	}
	if h.closed {
		return object.None, nil
	}
	h.closed = true
	if err := h.conn.Close(); err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "closing websocket connection")
	}
	return object.None, nil
}
