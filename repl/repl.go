// Package repl SPDX-License-Identifier: Apache-2.0
//
// repl is a line-at-a-time NAUX session: source typed at the prompt is
// lexed, parsed, and run through the tree-walking interpreter, with
// bindings and the event stream persisting across lines.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"naux/internal/diagnostics"
	"naux/internal/interpreter"
	"naux/internal/lexer"
	"naux/internal/parser"
)

const PROMPT = ">> "

// Start runs a REPL session over in, writing prompts and results to out.
// The interpreter's Env, Events, and Errors persist across lines, so
// bindings from one line are visible to the next.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	it := interpreter.New(nil)
	seenEvents, seenErrors := 0, 0

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		toks, lexErr := lexer.Lex(line)
		if lexErr != nil {
			fmt.Fprintln(out, lexErr)
			continue
		}
		stmts, parseErr := parser.Parse(toks)
		if parseErr != nil {
			fmt.Fprintln(out, parseErr)
			continue
		}

		res := it.Run(stmts)
		for _, ev := range res.Events[seenEvents:] {
			fmt.Fprintf(out, "%s: %s\n", ev.Kind, ev.Payload)
		}
		for _, d := range res.Errors[seenErrors:] {
			reportRepl(out, d)
		}
		seenEvents, seenErrors = len(res.Events), len(res.Errors)
	}
}

func reportRepl(out io.Writer, d *diagnostics.Diagnostic) {
	fmt.Fprintf(out, "error[%s]: %s\n", d.Kind, d.Message)
}
