package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/emberlang/ember"
	"github.com/emberlang/ember/builtins"
)

const (
	historyFile = ".ember_history"
	prompt      = "> "
)

var banner = fmt.Sprintf("ember %s — Ctrl+C cancels input, Ctrl+D or 'exit' quits.", ember.Version)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		os.Exit(runRepl())
	}

	switch args[0] {
	case "-h", "--help":
		usage()
		return
	case "-v", "--version":
		fmt.Println(ember.Version)
		return
	default:
		os.Exit(runFile(args[0]))
	}
}

func usage() {
	fmt.Printf(`ember %s

Usage:
  ember                start the interactive REPL
  ember file.lang       run a script
  ember -h, --help      show this help
  ember -v, --version   print the version
`, ember.Version)
}

func runFile(path string) int {
	ip := ember.NewInterpreter()
	ip.Use(builtins.Set{})

	_, err := ip.RunFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	return 0
}

func runRepl() int {
	fmt.Println(banner)

	ip := ember.NewInterpreter()
	ip.Use(builtins.Set{})

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return 0
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" {
			return 0
		}

		v, err := ip.Run(line, "<repl>")
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			ln.AppendHistory(line)
			continue
		}
		if v.TypeName() != "null" {
			fmt.Println(green(v.String()))
		}
		ln.AppendHistory(line)
	}
}
