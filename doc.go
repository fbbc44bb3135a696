// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

/*
Package pva implements the client side request core of the process variable access protocol.

A Context owns every request created by the client. Each request gets an integer ID that is unique among the live requests of the Context, and inbound responses carry that ID so the Context can route them back. The ID to request mapping is kept in an IntMap, a small chained hash map keyed by int32.

A Channel is a named endpoint on a server. Requests are created on a Channel and reach the server through the Transport the Channel is bound to. When the Channel loses its Transport or is destroyed, every request on it is told through ReportStatus.

A BaseRequest implements the lifecycle shared by all operations. At most one operation may be pending on a request at a time. Submitting an operation queues the request on the Transport, and the Transport later asks the request to write its message. Destroying a request unregisters it and, unless the server already destroyed it, queues a destroy request message.

A Muxer is the Transport implementation. It carries the messages of many requests over one connection, which may be TCP or a websocket, and hands inbound messages to the Context for dispatch.

A frame is the basic structure within a Muxer data stream. It consists of an eight byte frame header followed by the payload. */
package pva
