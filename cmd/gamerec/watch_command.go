package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	gsync "gamerec/internal/sync"
)

const defaultAPIURL = "http://localhost:8080"

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var tcpAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream dataset events from a running API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tcpAddr != "" {
				return watchTCP(cmd, ctx, tcpAddr)
			}
			base := firstNonEmpty(ctx.apiURL, defaultAPIURL)
			endpoint, err := websocketURL(base, "/ws")
			if err != nil {
				return fmt.Errorf("ws url: %w", err)
			}

			ws, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), endpoint, nil)
			if err != nil {
				return fmt.Errorf("connect %s: %w", endpoint, err)
			}
			defer ws.Close()

			go func() {
				<-cmd.Context().Done()
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				_ = ws.Close()
			}()

			out := cmd.OutOrStdout()
			for {
				_, msg, err := ws.ReadMessage()
				if err != nil {
					if cmd.Context().Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return err
				}
				if ctx.jsonOutput {
					fmt.Fprint(out, string(msg))
					continue
				}
				var ev gsync.Event
				if err := json.Unmarshal(msg, &ev); err != nil {
					return errors.New("unexpected event payload")
				}
				printEvent(cmd, ev)
			}
		},
	}

	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "Read the raw TCP event stream at this address instead of the websocket")
	return cmd
}

func watchTCP(cmd *cobra.Command, ctx *commandContext, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(cmd.Context(), "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(cmd.Context(), func() { _ = conn.Close() })
	defer stop()

	out := cmd.OutOrStdout()
	rd := bufio.NewReader(conn)
	for {
		line, err := rd.ReadBytes('\n')
		if err != nil {
			if cmd.Context().Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.jsonOutput {
			fmt.Fprint(out, string(line))
			continue
		}
		var ev gsync.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return errors.New("unexpected event payload")
		}
		printEvent(cmd, ev)
	}
}

func printEvent(cmd *cobra.Command, ev gsync.Event) {
	out := cmd.OutOrStdout()
	at := ev.At.Local().Format(time.DateTime)
	switch ev.Type {
	case gsync.EventDatasetReloaded:
		fmt.Fprintf(out, "%s  dataset reloaded: %d games, %d genres\n", at, ev.Games, ev.Genres)
	case gsync.EventWelcome:
		fmt.Fprintf(out, "%s  connected (%s)\n", at, ev.Transport)
	default:
		fmt.Fprintf(out, "%s  %s\n", at, ev.Type)
	}
}
