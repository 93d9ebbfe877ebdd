package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pterm/pterm"

	"skeinc/build"
)

// runRepl runs the interactive session.  Each accepted entry is a top-level
// item appended to the session program; the whole program is recompiled after
// every entry so cross-references and port pairings are rechecked.  An entry
// ending in `/\` continues on the next line.
func runRepl(profile *build.Profile) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}

		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	pterm.Info.Println("skein " + skeinVersion + " -- :quit to exit, :code to disassemble")

	compiler := build.NewCompiler(profile)

	var accepted []string
	var buffer strings.Builder
	var last *build.Result

	for {
		prompt := "skein> "
		if buffer.Len() > 0 {
			prompt = "  ...> "
		}

		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				pterm.Error.Println(err.Error())
				return
			}
		}

		trimmed := strings.TrimSpace(input)
		if buffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			if replCommand(trimmed, last) {
				return
			}

			continue
		}

		buffer.WriteString(input)

		// A trailing conjunction continues the entry.
		if strings.HasSuffix(trimmed, "/\\") {
			buffer.WriteString("\n")
			continue
		}

		entry := buffer.String()
		buffer.Reset()

		if strings.TrimSpace(entry) == "" {
			continue
		}

		state.AppendHistory(strings.TrimSpace(entry))

		src := sessionSource(append(accepted, entry))
		res := compiler.Compile(src)

		displayDiagnostics(res, src, "warn")

		if res.Failed() {
			continue
		}

		accepted = append(accepted, entry)
		last = res

		words := 0
		for _, np := range res.Nodes {
			words += len(np.Code)
		}

		pterm.Success.Printfln("ok: %d nodes, %d words", len(res.Nodes), words)
	}
}

func replCommand(cmd string, last *build.Result) (exit bool) {
	switch cmd {
	case ":quit", ":q":
		return true
	case ":code":
		if last == nil || last.Nodes == nil {
			pterm.Warning.Println("nothing compiled yet")
			return false
		}

		for _, coord := range last.Coords {
			fmt.Print(last.Nodes[coord].Disassemble())
		}
	default:
		pterm.Warning.Println("unknown command: " + cmd)
	}

	return false
}

// sessionSource joins accepted entries into one program: entries are
// top-level items, so they conjoin.
func sessionSource(entries []string) string {
	return strings.Join(entries, "\n/\\\n")
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".skein_history")
}
