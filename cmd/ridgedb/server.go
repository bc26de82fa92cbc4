package main

import (
	"bufio"
	"fmt"
	"net"

	"go.uber.org/zap"

	"ridgedb/internal/engine"
)

// runServer is a line-oriented TCP front-end over the same statement
// executor the REPL uses: one statement per line, one connection at a
// time processed fully before the next (ridgedb has no concurrent-writer
// support, so there's nothing to gain from serving connections in
// parallel against a single Engine).
func runServer(eng *engine.Engine, addr string, log *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info("ridgedb server listening", zap.String("addr", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept failed", zap.Error(err))
			continue
		}
		handleConn(eng, conn, log)
	}
}

func handleConn(eng *engine.Engine, conn net.Conn, log *zap.Logger) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	w := bufio.NewWriter(conn)
	defer w.Flush()

	for scanner.Scan() {
		line := scanner.Text()
		if result := handleMetaCommand(eng, line, func(s string) { fmt.Fprintln(w, s) }); result != metaCommandUnrecognized {
			if result == metaCommandExit {
				w.Flush()
				return
			}
			w.Flush()
			continue
		}

		out, err := Execute(eng, line)
		if err != nil {
			fmt.Fprintln(w, "error:", err)
		} else if out != "" {
			fmt.Fprintln(w, out)
		}
		w.Flush()
	}
	if err := scanner.Err(); err != nil {
		log.Error("connection read error", zap.Error(err))
	}
}
