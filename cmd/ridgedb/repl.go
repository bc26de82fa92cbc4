package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"ridgedb/internal/engine"
)

// runREPL is the interactive front-end: a readline-backed loop that
// mirrors a classic prepare/execute REPL split, checking each line
// against the meta-commands in meta.go before handing it to the
// statement dispatcher in statement.go.
func runREPL(eng *engine.Engine) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ridgedb > ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		printed := false
		result := handleMetaCommand(eng, line, func(s string) {
			fmt.Println(s)
			printed = true
		})
		if result == metaCommandExit {
			return nil
		}
		if result == metaCommandSuccess {
			_ = printed
			continue
		}

		out, err := Execute(eng, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}
