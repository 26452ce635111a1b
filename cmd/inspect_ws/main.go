package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/fanout"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

func main() {
	addr := flag.String("addr", "localhost:8780", "match host address")
	matchID := flag.String("match", "", "match id to watch")
	snapshots := flag.Bool("snapshots", false, "also print snapshot frames")
	pretty := flag.Bool("pretty", false, "pretty-print payloads")
	binary := flag.Bool("msgpack", false, "request binary msgpack snapshot frames")
	flag.Parse()

	if *matchID == "" {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/inspect_ws -match <id> [-addr host:port] [-snapshots] [-msgpack] [-pretty]")
		os.Exit(1)
	}

	telemetry.Init(telemetry.ParseLogLevel(os.Getenv("LOG_LEVEL")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	types := []events.EventType{
		events.EventPeriodStart,
		events.EventOvertime,
		events.EventPuckPop,
		events.EventInjury,
		events.EventXP,
		events.EventFinal,
	}
	if *snapshots {
		types = append(types, events.EventSnapshot)
	}

	bus.Subscribe(func(e events.Event) error {
		var data []byte
		var err error
		if *pretty {
			data, err = json.MarshalIndent(e.Payload, "  ", "  ")
		} else {
			data, err = json.Marshal(e.Payload)
		}
		if err != nil {
			return err
		}
		fmt.Printf("[%s] tick=%-6d %-12s %s\n", e.Timestamp.Format("15:04:05.000"), e.Tick, e.Type, data)
		if e.Type == events.EventFinal {
			stop()
		}
		return nil
	}, types...)

	client := fanout.NewClient(*addr, *matchID, bus)
	if *binary {
		client.WithMsgpack()
	}
	client.ConnectWithRetry(ctx)
}
