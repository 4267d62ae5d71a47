// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"naux/internal/bytecode"
	"naux/internal/config"
	"naux/internal/diagnostics"
	"naux/internal/interpreter"
	"naux/internal/ir"
	"naux/internal/lexer"
	"naux/internal/parser"
	"naux/internal/runid"
	"naux/internal/vm"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "run" {
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Println("Usage: naux run <file.naux> [--engine=tree|vm]")
		os.Exit(1)
	}

	cfg, cfgErr := config.Load("naux.yaml")
	if cfgErr != nil {
		color.Red("failed to load naux.yaml: %s", cfgErr)
		os.Exit(1)
	}

	path := args[0]
	engine := cfg.Engine
	for _, a := range args[1:] {
		if v, ok := strings.CutPrefix(a, "--engine="); ok {
			engine = v
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	toks, lexErr := lexer.Lex(string(source))
	if lexErr != nil {
		reportDiagnostic(path, string(source), lexErr)
		os.Exit(1)
	}
	stmts, parseErr := parser.Parse(toks)
	if parseErr != nil {
		reportDiagnostic(path, string(source), parseErr)
		os.Exit(1)
	}

	id := runid.New()
	var errs []*diagnostics.Diagnostic

	switch engine {
	case "vm":
		prog := ir.Optimize(ir.Compile(stmts))
		lowered := bytecode.Lower(prog)
		m := vm.New(nil)
		m.MaxDepth = cfg.RecursionLimit
		m.JIT = &vm.ThresholdLogger{Threshold: cfg.JITHotnessThreshold}
		res := m.Run(lowered)
		for _, e := range res.Events {
			fmt.Println(e.Kind, e.Payload)
		}
		errs = res.Errors
	default:
		it := interpreter.New(nil)
		it.MaxDepth = cfg.RecursionLimit
		res := it.Run(stmts)
		for _, e := range res.Events {
			fmt.Println(e.Kind, e.Payload)
		}
		errs = res.Errors
	}

	for _, d := range errs {
		reportDiagnostic(path, string(source), d)
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
	color.Green("✅ [%s] %s ran cleanly (%s engine)", id, path, engine)
}

// reportDiagnostic renders a *diagnostics.Diagnostic in the Rust-style
// caret format shared by both engines; any other error (I/O, etc.) is
// printed plainly.
func reportDiagnostic(path, src string, err error) {
	var d *diagnostics.Diagnostic
	switch e := err.(type) {
	case *diagnostics.Diagnostic:
		d = e
	case *lexer.Error:
		pos := e.Pos
		d = diagnostics.New(e.Kind, e.Message, &pos)
	case *parser.Error:
		pos := e.Pos
		d = diagnostics.New(e.Kind, e.Message, &pos)
	default:
		color.Red("error: %s", err)
		return
	}
	if d.Pos == nil {
		color.Red("error[%s]: %s", d.Kind, d.Message)
		return
	}
	rep := diagnostics.NewReporter(path, src)
	fmt.Println(rep.Render(d))
}
