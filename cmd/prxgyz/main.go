package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/prxgyz/internal/automation"
	"codeberg.org/mutker/prxgyz/internal/config"
	"codeberg.org/mutker/prxgyz/internal/engine"
	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/host"
	"codeberg.org/mutker/prxgyz/internal/level"
	"codeberg.org/mutker/prxgyz/internal/logger"
	"codeberg.org/mutker/prxgyz/internal/meter"
	"codeberg.org/mutker/prxgyz/internal/panel"
	"codeberg.org/mutker/prxgyz/internal/param"
	"codeberg.org/mutker/prxgyz/internal/pid"
	"codeberg.org/mutker/prxgyz/internal/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

const (
	gainHandle param.Handle = "gain"
	muteHandle param.Handle = "mute"
)

const (
	gainStepDB    = 0.5
	headlessLog   = time.Second
	panelColumns  = 60
	clearScreen   = "\033[H\033[2J"
	shutdownGrace = 2 * time.Second
)

type app struct {
	cfg      *config.Config
	editor   *param.Editor
	recorder automation.Service
	engine   *engine.Engine
	composer *panel.Composer
	gain     *widget.Slider
	pidFile  *pid.File
	metrics  *http.Server
	log      logger.Logger
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	a, err := newApp(cfg)
	if err != nil {
		logError(logger.Default(), err, "failed to initialize")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	go a.engine.Run(ctx)
	a.serveMetrics(cancel)

	if err := a.loop(ctx, cancel); err != nil {
		logError(a.log, err, "error in render loop")
	}
	a.cleanup()
}

func newApp(cfg *config.Config) (*app, error) {
	errFactory := errors.New()
	log := logger.Default()

	pidFile, err := pid.Acquire(stateDir(cfg))
	if err != nil {
		return nil, err
	}

	params := newParams()
	logParams(log, params)

	recorder, err := automation.NewService(cfg.AutomationConfig(), log.With("automation"))
	if err != nil {
		_ = pidFile.Release()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := host.NewMetrics(registry)
	if err != nil {
		_ = recorder.Close()
		_ = pidFile.Release()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}
	h := host.New(params, recorder, log.With("host"), host.WithMetrics(metrics))
	editor := param.NewEditor(params, h)

	peak := level.New()
	eng, err := engine.New(cfg.Engine(), params, engine.Bindings{Gain: gainHandle, Mute: muteHandle}, peak)
	if err != nil {
		_ = recorder.Close()
		_ = pidFile.Release()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}
	eng.SetEditorOpen(true)

	gain := widget.NewSlider(editor, gainHandle)
	mute := widget.NewToggle(editor, muteHandle)
	composer := panel.New(params, peak, meter.NewPresenter(cfg.Meter()), gain, mute, panel.DefaultLayout(), " dB")

	a := &app{
		cfg:      cfg,
		editor:   editor,
		recorder: recorder,
		engine:   eng,
		composer: composer,
		gain:     gain,
		pidFile:  pidFile,
		log:      log,
	}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		a.metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return a, nil
}

func newParams() *param.Set {
	return param.NewSet(
		param.Definition{Handle: gainHandle, Name: "Gain", Unit: "dB", Range: param.Range{Min: -10, Max: 10}, Default: 0},
		param.Definition{Handle: muteHandle, Name: "Mute", Range: param.BoolRange, Default: 0},
	)
}

func logParams(log logger.Logger, params *param.Set) {
	for _, handle := range params.Handles() {
		def, _ := params.Definition(handle)
		log.Debug().
			Str("param", string(handle)).
			Str("name", def.Name).
			Str("unit", def.Unit).
			Float64("min", def.Range.Min).
			Float64("max", def.Range.Max).
			Float64("default", def.Default).
			Msg("Parameter defined")
	}
}

// logError logs err with its code when it carries one.
func logError(log logger.Logger, err error, msg string) {
	var coded errors.Error
	if errors.As(err, &coded) {
		log.ErrorWithCode(coded).Msg(msg)
		return
	}
	log.Error().Err(err).Msg(msg)
}

// stateDir is where the PID file lives: beside the automation database
// when recording, the temp dir otherwise.
func stateDir(cfg *config.Config) string {
	if cfg.Automation && cfg.AutomationDB != "" {
		return filepath.Dir(cfg.AutomationDB)
	}
	return os.TempDir()
}

func (a *app) serveMetrics(cancel context.CancelFunc) {
	if a.metrics == nil {
		return
	}
	a.log.Info().Str("addr", a.metrics.Addr).Msg("Serving metrics")
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logError(a.log, errors.New().Wrap(errors.ErrMetricsServe, err), "metrics server stopped")
			cancel()
		}
	}()
}

func (a *app) loop(ctx context.Context, cancel context.CancelFunc) error {
	interval := a.cfg.FrameInterval()
	if interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidRate, struct{ FrameRate int }{a.cfg.FrameRate})
	}

	if a.cfg.Headless {
		return a.runHeadless(ctx, interval)
	}

	term, err := openTerminal(cancel)
	if err != nil {
		a.log.Warn().Err(err).Msg("No terminal available, falling back to headless mode")
		return a.runHeadless(ctx, interval)
	}
	defer term.restore()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var screen bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			in := a.inputFromKeys(term.drain())
			view := a.composer.Render(0, 0, in, time.Now())

			screen.Reset()
			renderer := panel.TextRenderer{Columns: panel.TerminalColumns(int(os.Stdout.Fd()), panelColumns)}
			if err := renderer.Render(&screen, view); err != nil {
				return errors.New().Wrap(errors.ErrRenderLoop, err)
			}
			out := clearScreen + strings.ReplaceAll(screen.String(), "\n", "\r\n") + "\r\n[ ] gain  m mute  q quit\r\n"
			if _, err := os.Stdout.WriteString(out); err != nil {
				return errors.New().Wrap(errors.ErrRenderLoop, err)
			}
		}
	}
}

// inputFromKeys maps one tick of key presses to panel events.
func (a *app) inputFromKeys(keys []byte) panel.Input {
	in := panel.Input{}
	gain := a.gain.Display()
	for _, k := range keys {
		switch k {
		case 'm', 'M':
			in[panel.IDMute] = append(in[panel.IDMute], widget.Event{Kind: widget.Click})
		case '[':
			gain = a.gain.Range().Clamp(gain - gainStepDB)
			in[panel.IDGain] = append(in[panel.IDGain], widget.Drag(gain)...)
		case ']':
			gain = a.gain.Range().Clamp(gain + gainStepDB)
			in[panel.IDGain] = append(in[panel.IDGain], widget.Drag(gain)...)
		}
	}
	return in
}

// headlessScript is replayed one entry per frame.
func headlessScript() []panel.Input {
	return []panel.Input{
		{panel.IDGain: {{Kind: widget.DragStart}}},
		{panel.IDGain: {{Kind: widget.DragMove, Value: -3}}},
		{panel.IDGain: {{Kind: widget.DragMove, Value: -6}}},
		{panel.IDGain: {{Kind: widget.DragMove, Value: 3}, {Kind: widget.DragEnd}}},
		{panel.IDMute: {{Kind: widget.Click}}},
		{panel.IDMute: {{Kind: widget.Click}}},
	}
}

func (a *app) runHeadless(ctx context.Context, interval time.Duration) error {
	a.log.Info().Msg("Running headless")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	script := headlessScript()
	lastLog := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			var in panel.Input
			if len(script) > 0 {
				in, script = script[0], script[1:]
			}
			view := a.composer.Render(0, 0, in, now)

			if now.Sub(lastLog) < headlessLog {
				continue
			}
			lastLog = now
			gain, _ := view.Find(panel.IDGain, panel.KindSlider)
			peak, _ := view.Find(panel.IDMeter, panel.KindMeter)
			mute, _ := view.Find(panel.IDMute, panel.KindToggle)
			a.log.Info().
				Str("gain", gain.Text).
				Float64("meter", peak.Fraction).
				Bool("mute", mute.On).
				Uint64("blocks", a.engine.Blocks()).
				Bool("clipping", a.engine.Clipping()).
				Msg("")
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func (a *app) cleanup() {
	a.composer.Close()
	a.editor.CloseAll()
	a.engine.SetEditorOpen(false)

	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.log.Error().Err(err).Msg("failed to stop metrics server")
		}
		cancel()
	}
	if err := a.recorder.Close(); err != nil {
		logError(a.log, err, "failed to close automation recorder")
	}
	if err := a.pidFile.Release(); err != nil {
		logError(a.log, err, "failed to remove PID file")
	}
	a.log.Info().Msg("Exiting...")
}
