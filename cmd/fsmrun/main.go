// Command fsmrun is the reference driver for the stoplight/crosswalk FSM
// workload, adapted from original_source/fsmdemo.c's main(): parse
// arguments, install signal handlers, start the timer service, spawn the
// FSM workers, run the command interpreter (interactive or scripted), then
// shut everything down in the same order the original does.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-fsm/fsmkernel"
	"github.com/go-fsm/fsmkernel/internal/command"
	"github.com/go-fsm/fsmkernel/internal/config"
	"github.com/go-fsm/fsmkernel/internal/demo"
)

const shutdownGrace = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cmd := config.NewRootCommand()
	if err := cmd.ParseFlags(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := newLogger(*cfg)
	defer logger.Sync()

	periods := demo.NewPeriods(cfg.TickMs)
	rt := fsmkernel.NewRuntime(
		fsmkernel.WithLogger(logger),
		fsmkernel.WithStateChangeCallback(func(worker string, from, to fsmkernel.StateID) {
			logger.Infow("trans", "worker", worker, "from", from, "to", to)
		}),
	)

	if _, err := demo.SetupStoplight(rt, "stoplight", periods); err != nil {
		logger.Errorw("setup failed", "error", err)
		return 1
	}
	if _, err := demo.SetupCrosswalk(rt, "crosswalk"); err != nil {
		logger.Errorw("setup failed", "error", err)
		return 1
	}

	rt.Start()

	shutdownRequested := make(chan struct{}, 1)
	installSignalHandler(shutdownRequested, logger)

	ip := command.New(rt, demo.Catalog, time.Duration(cfg.TickMs)*time.Millisecond, cfg.ScriptFile, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if cfg.NonInteractive {
			if err := ip.RunScript(cfg.ScriptFile); err != nil {
				logger.Warnw("script run failed", "error", err)
			}
			return
		}
		runInteractive(ip, logger)
	}()

	select {
	case <-done:
	case <-shutdownRequested:
		rt.Broadcast(fsmkernel.Event{ID: "Done"})
	}

	logger.Infow("cancel timer service and join workers")
	if err := rt.Shutdown(shutdownGrace); err != nil {
		logger.Errorw("shutdown did not complete in time", "error", err)
		return 1
	}
	return 0
}

// runInteractive mirrors original_source/cli.c's evt_producer: read lines
// from stdin until a token requests shutdown.
func runInteractive(ip *command.Interpreter, logger *zap.SugaredLogger) {
	fmt.Println("Enter commands (g:start FSMs, h:help, x:exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		shutdown, err := ip.Run(scanner.Text())
		if err != nil {
			logger.Warnw("command failed", "error", err)
		}
		if shutdown {
			return
		}
	}
}

// installSignalHandler mirrors original_source/fsmdemo.c's sig_handler: on
// SIGINT/SIGTERM, flip a shutdown-requested signal rather than calling
// exit() directly, per spec.md §9's Design Note on signal handling.
func installSignalHandler(shutdownRequested chan<- struct{}, logger *zap.SugaredLogger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infow("caught signal, requesting shutdown", "signal", sig.String())
		shutdownRequested <- struct{}{}
	}()
}

// newLogger builds a zap.SugaredLogger whose level reflects cfg.Debug's
// verbose bit, per spec.md §6's debug bitmask.
func newLogger(cfg config.Config) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if cfg.HasDebugBit(config.DebugVerbose) {
		level = zapcore.DebugLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
