// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package websocket implements the live channel: a hub that fans accepted
readings out to connected dashboard viewers over gorilla/websocket.

Key Components:

  - Hub: owns the subscriber set and dispatches messages
  - Client: one connection with a buffered outbound queue
  - Message: the JSON frame written to clients

Architecture:

	IngestionService --Publish--> hub queue --> Client.send --> writePump --> socket

The hub runs on a single goroutine (RunWithContext). Subscribe, Unsubscribe
and Publish are requests to that goroutine, so they are applied in order and
the subscriber map is never touched elsewhere. Each client has two
goroutines:

  - readPump: refreshes the read deadline on pongs and discards client frames
  - writePump: the only writer; sends queued messages and periodic pings

Message Types:

  - connected: sent once to a new subscriber, {"type":"connected","message":"Welcome"}
  - sensor_update: one per accepted reading, {"type":"sensor_update","data":Reading}

Delivery:

Publish never blocks and has no error result. A reading is dropped when the
hub queue is full, and a subscriber whose queue is full is disconnected;
both are counted in sensorhub_broadcast_dropped_total. There is no replay:
a subscriber only sees readings accepted after it subscribed.

Usage:

	hub := websocket.NewHub(cfg.Hub)
	go hub.RunWithContext(ctx)

	client := websocket.NewClient(hub, conn)
	if err := hub.Subscribe(r.Context(), client); err != nil {
	    conn.Close()
	    return
	}
	client.Start()
*/
package websocket
