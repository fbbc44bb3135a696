// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import "fmt"

// Command enumerates the application message command codes.
type Command byte

const (
	// CommandBeacon is a server beacon, not handled by the client core
	CommandBeacon = Command(0x00)
	// CommandConnectionValidation is the connection handshake
	CommandConnectionValidation = Command(0x01)
	// CommandEcho is an application level echo
	CommandEcho = Command(0x02)
	// CommandSearch is a channel name search
	CommandSearch = Command(0x03)
	// CommandSearchResponse answers a search
	CommandSearchResponse = Command(0x04)
	// CommandCreateChannel creates a channel on the server
	CommandCreateChannel = Command(0x07)
	// CommandDestroyChannel destroys a channel on the server
	CommandDestroyChannel = Command(0x08)
	// CommandGet is a get operation
	CommandGet = Command(0x0A)
	// CommandPut is a put operation
	CommandPut = Command(0x0B)
	// CommandPutGet is a put-get operation
	CommandPutGet = Command(0x0C)
	// CommandMonitor is a monitor operation
	CommandMonitor = Command(0x0D)
	// CommandArray is an array operation
	CommandArray = Command(0x0E)
	// CommandDestroyRequest releases the server side resources of a request
	CommandDestroyRequest = Command(0x0F)
	// CommandProcess is a process operation
	CommandProcess = Command(0x10)
	// CommandGetField is an introspection operation
	CommandGetField = Command(0x11)
	// CommandMessage carries a text message addressed to a request
	CommandMessage = Command(0x12)
	// CommandRPC is a remote procedure call operation
	CommandRPC = Command(0x14)
	// CommandCancelRequest cancels an in-progress request
	CommandCancelRequest = Command(0x15)
)

var commandTexts = map[Command]string{
	CommandBeacon:               "Beacon",
	CommandConnectionValidation: "ConnectionValidation",
	CommandEcho:                 "Echo",
	CommandSearch:               "Search",
	CommandSearchResponse:       "SearchResponse",
	CommandCreateChannel:        "CreateChannel",
	CommandDestroyChannel:       "DestroyChannel",
	CommandGet:                  "Get",
	CommandPut:                  "Put",
	CommandPutGet:               "PutGet",
	CommandMonitor:              "Monitor",
	CommandArray:                "Array",
	CommandDestroyRequest:       "DestroyRequest",
	CommandProcess:              "Process",
	CommandGetField:             "GetField",
	CommandMessage:              "Message",
	CommandRPC:                  "RPC",
	CommandCancelRequest:        "CancelRequest",
}

func (c Command) String() string {
	if s, ok := commandTexts[c]; ok {
		return s
	}
	return fmt.Sprintf("Command(0x%02x)", byte(c))
}

// ControlCommand enumerates the transport control message codes.
type ControlCommand byte

const (
	// ControlSetMarker marks a position in the byte stream
	ControlSetMarker = ControlCommand(0x00)
	// ControlAckMarker acknowledges a marker
	ControlAckMarker = ControlCommand(0x01)
	// ControlSetByteOrder announces the byte order the peer uses for payloads
	ControlSetByteOrder = ControlCommand(0x02)
	// ControlEchoRequest requests an ControlEchoResponse with the same size value
	ControlEchoRequest = ControlCommand(0x03)
	// ControlEchoResponse answers a ControlEchoRequest
	ControlEchoResponse = ControlCommand(0x04)
)

var controlCommandTexts = map[ControlCommand]string{
	ControlSetMarker:    "SetMarker",
	ControlAckMarker:    "AckMarker",
	ControlSetByteOrder: "SetByteOrder",
	ControlEchoRequest:  "EchoRequest",
	ControlEchoResponse: "EchoResponse",
}

func (c ControlCommand) String() string {
	if s, ok := controlCommandTexts[c]; ok {
		return s
	}
	return fmt.Sprintf("Control(0x%02x)", byte(c))
}
