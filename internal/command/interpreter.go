// Package command implements the external command interpreter spec.md §1
// names as an excluded collaborator: it only ever calls into
// *fsmkernel.Runtime through its public surface — Broadcast, SetTimer,
// ToggleTimer, Show, ShowTimers, FindByName — never reaching into the core
// package's internals.
package command

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/go-fsm/fsmkernel"
)

const (
	evtInit   fsmkernel.EventID = "Init"
	evtDone   fsmkernel.EventID = "Done"
	evtButton fsmkernel.EventID = "Button"
)

const helpText = `` +
	"\tx,q: exit producer and workers (gracefully)\n" +
	"\tw: show workers and curr state\n" +
	"\tb: crosswalk button push\n" +
	"\tg: go Init\n" +
	"\teN: send event id N\n" +
	"\ttN: toggle timer N\n" +
	"\tr: run event input script\n" +
	"\ts: show current FSM state\n" +
	"\tn N: main thread sleeps N ticks (worker/timer threads keep running)\n" +
	"\tdefault: unknown command\n"

// Interpreter drives a *fsmkernel.Runtime from the command surface spec.md
// §6 defines: x/q, g, b, eN, tN, n N, s, w, r, h.
type Interpreter struct {
	rt         *fsmkernel.Runtime
	catalog    *fsmkernel.EventCatalog
	tick       time.Duration
	scriptFile string
	logger     *zap.SugaredLogger
	out        *bufio.Writer
}

// New builds an Interpreter. catalog may be nil if the workload never uses
// the "eN" token. tick is the base multiplier spec.md §6 calls "-t <ms>".
func New(rt *fsmkernel.Runtime, catalog *fsmkernel.EventCatalog, tick time.Duration, scriptFile string, logger *zap.SugaredLogger) *Interpreter {
	return &Interpreter{
		rt:         rt,
		catalog:    catalog,
		tick:       tick,
		scriptFile: scriptFile,
		logger:     logger,
		out:        bufio.NewWriter(os.Stdout),
	}
}

// Run processes one line of input (typically one line read from stdin or a
// script), splitting it into whitespace-separated tokens and interpreting
// each in turn. It returns true once a token requests shutdown ("x"/"q").
func (ip *Interpreter) Run(line string) (shutdown bool, err error) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if tok == "" {
			continue
		}
		if tok[0] == '#' {
			fmt.Fprintf(ip.out, "COMMENT:%s\n", line)
			ip.out.Flush()
			return false, nil
		}

		done, consumed, cmdErr := ip.dispatch(tok, fields[i+1:])
		if cmdErr != nil {
			ip.logger.Warnw("command failed", "token", tok, "error", cmdErr)
		}
		i += consumed
		if done {
			return true, nil
		}
	}
	return false, nil
}

// dispatch interprets one token, optionally consuming following fields
// (only "n" does, for its tick count). It returns how many extra fields it
// consumed from rest.
func (ip *Interpreter) dispatch(tok string, rest []string) (done bool, consumed int, err error) {
	switch {
	case tok == "x" || tok == "q":
		ip.rt.Broadcast(fsmkernel.Event{ID: evtDone})
		return true, 0, nil
	case tok == "g":
		ip.rt.Broadcast(fsmkernel.Event{ID: evtInit})
		return false, 0, nil
	case tok == "b":
		ip.rt.Broadcast(fsmkernel.Event{ID: evtButton})
		return false, 0, nil
	case tok == "h":
		fmt.Fprint(ip.out, helpText)
		ip.out.Flush()
		return false, 0, nil
	case tok == "s":
		ip.snapshot()
		return false, 0, nil
	case tok == "w":
		ip.showWorkers()
		return false, 0, nil
	case tok == "r":
		return false, 0, ip.RunScript(ip.scriptFile)
	case tok == "n" && len(rest) > 0:
		n, perr := strconv.Atoi(rest[0])
		if perr != nil {
			return false, 0, fmt.Errorf("bad nap count %q: %w", rest[0], perr)
		}
		time.Sleep(time.Duration(n) * ip.tick)
		return false, 1, nil
	case strings.HasPrefix(tok, "n") && len(tok) > 1:
		n, perr := strconv.Atoi(tok[1:])
		if perr != nil {
			return false, 0, fmt.Errorf("bad nap count %q: %w", tok, perr)
		}
		time.Sleep(time.Duration(n) * ip.tick)
		return false, 0, nil
	case strings.HasPrefix(tok, "e") && len(tok) > 1:
		n, perr := strconv.Atoi(tok[1:])
		if perr != nil {
			return false, 0, fmt.Errorf("bad event id %q: %w", tok, perr)
		}
		id, ok := ip.catalog.ByNumber(n)
		if !ok {
			ip.logger.Warnw("unknown numeric event, discarding", "n", n)
			return false, 0, nil
		}
		ip.rt.Broadcast(fsmkernel.Event{ID: id})
		return false, 0, nil
	case strings.HasPrefix(tok, "t") && len(tok) > 1:
		n, perr := strconv.Atoi(tok[1:])
		if perr != nil {
			return false, 0, fmt.Errorf("bad timer id %q: %w", tok, perr)
		}
		return false, 0, ip.rt.ToggleTimer(fsmkernel.TimerID(n))
	default:
		fmt.Fprintf(ip.out, "%s: unknown cmd\n", tok)
		ip.out.Flush()
		return false, 0, nil
	}
}

// snapshot implements the "s" token: worker + timer diagnostic dump, per
// spec.md §6 "emit a diagnostic snapshot ... to standard output."
func (ip *Interpreter) snapshot() {
	fmt.Fprintln(ip.out, "*** FSM status")
	for _, ts := range ip.rt.ShowTimers() {
		fmt.Fprintf(ip.out, "timer %d: event=%s period=%dms remaining=%dms armed=%v\n",
			ts.ID, ts.Event, ts.PeriodMs, ts.RemainingMs, ts.Armed)
	}
	ip.showWorkers()
	fmt.Fprintln(ip.out, "*** END FSM status")
	ip.out.Flush()
}

func (ip *Interpreter) showWorkers() {
	fmt.Fprintf(ip.out, "workers\n%-15s:%-12s %-14s\n", "id", "name", "[curr_state]")
	for _, w := range ip.rt.Show() {
		fmt.Fprintf(ip.out, "%d:%-12s %s\n", w.ID, w.Name, w.State)
	}
	ip.out.Flush()
}

// RunScript implements the "r" token: read a UTF-8 text script, skipping
// blank lines, echoing "#" comment lines, and feeding everything else to
// Run one line at a time, per spec.md §6's script file format.
func (ip *Interpreter) RunScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		done, err := ip.Run(line)
		if err != nil {
			ip.logger.Warnw("script line failed", "line", line, "error", err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
