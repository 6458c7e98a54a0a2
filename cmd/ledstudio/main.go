package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/api"
	"github.com/coreman2200/ledstudio/internal/config"
	diag "github.com/coreman2200/ledstudio/internal/diagnostics"
	"github.com/coreman2200/ledstudio/internal/led"
	"github.com/coreman2200/ledstudio/internal/store"
	"github.com/coreman2200/ledstudio/internal/studio"
	"github.com/coreman2200/ledstudio/internal/ws"
)

func main() {
	def := config.Default()

	// ---- Flags (config.yaml and the environment override them) ----
	var (
		addr       = flag.String("addr", def.Addr, "HTTP listen address")
		driver     = flag.String("driver", def.Driver, "driver: sim | spi | console")
		count      = flag.Int("leds", def.LedCount, "number of LEDs on the strip")
		colorOrder = flag.String("color", def.ColorOrder, "LED color order (e.g. GRB, RGB)")
		whiteCap   = flag.Float64("white-cap", def.WhiteCap, "cap r+g+b per LED as a fraction of full white, 0 disables")
		storeKind  = flag.String("store", def.Store.Kind, "scene store: memory | valkey")
		logLevel   = flag.String("log-level", def.LogLevel, "trace | debug | info | warn | error")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		envPath    = flag.String("env", ".env", "path to a .env file")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Effective config: flags, then config.yaml, then environment ----
	cfg := def
	cfg.Addr, cfg.Driver, cfg.LedCount = *addr, *driver, *count
	cfg.ColorOrder, cfg.WhiteCap, cfg.LogLevel = *colorOrder, *whiteCap, *logLevel
	cfg.Store.Kind = *storeKind

	if err := cfg.Merge(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}
	if err := config.LoadEnv(*envPath); err != nil {
		log.Warn().Err(err).Msg("env file not loaded")
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatal().Err(err).Msg("bad environment")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	} else if cfg.LogLevel != "" {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	state := ws.NewState(cfg.LedCount, cfg.Driver)

	// ---- Driver selection ----
	order, err := led.ParseOrder(cfg.ColorOrder)
	if err != nil {
		log.Warn().Err(err).Str("color", cfg.ColorOrder).Msg("bad color order; using RGB")
		order = led.RGB
	}
	drv, selected := openDriver(cfg, order, state)
	state.CurrentDriver = selected

	// ---- Scenes ----
	scenes, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store.Kind).Msg("scene store unavailable")
	}

	player := studio.New(drv, studio.Options{
		Count:     cfg.LedCount,
		WhiteCap:  cfg.WhiteCap,
		LimitAmps: cfg.LimitAmps,
		OnFrame:   state.BroadcastFrame,
		Reporter:  state,
	})
	state.Player = player

	// ---- HTTP routes ----
	r := mux.NewRouter()
	api.Register(r, &api.Handler{Store: scenes, Player: player})
	r.HandleFunc("/ws", state.HandleFramesWS)
	r.HandleFunc("/ws/live", state.HandleLiveWS)
	r.HandleFunc("/diag", state.HandleDiagWS)
	r.HandleFunc("/health", state.HandleHealth)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", selected).Int("leds", cfg.LedCount).Str("store", cfg.Store.Kind).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
	}
	if err := player.Close(); err != nil {
		log.Warn().Err(err).Msg("player close")
	}
	state.Close()
	if err := scenes.Close(); err != nil {
		log.Warn().Err(err).Msg("store close")
	}
}

// openDriver builds the configured driver. Hardware that fails to open
// falls back to the sim driver.
func openDriver(cfg config.Config, order led.Order, rep diag.Reporter) (led.Driver, string) {
	fallback := func(err error, want string) (led.Driver, string) {
		log.Warn().Err(err).Str("driver", want).Msg("driver init failed; falling back to SIM")
		rep.Report(diag.Diagnostic{
			Severity: diag.Warn, Code: diag.DriverFallback, Summary: "using the sim driver",
			Detail:         err.Error(),
			Evidence:       map[string]any{"requested": want},
			LikelyCauses:   []string{"SPI not enabled", "not running on the Pi", "no permission on /dev/spidev*"},
			SuggestedFixes: []string{"enable SPI with raspi-config", "check -driver and spi.dev in config.yaml"},
		})
		return led.NewSim(cfg.LedCount), "sim"
	}

	switch cfg.Driver {
	case "sim", "":
		return led.NewSim(cfg.LedCount), "sim"

	case "spi":
		d, err := led.NewSPI(cfg.SPI.Dev, cfg.LedCount, cfg.SPI.SpeedHz, order)
		if err != nil {
			return fallback(err, "spi")
		}
		log.Info().Str("dev", cfg.SPI.Dev).Int("speed_hz", cfg.SPI.SpeedHz).Str("order", order.String()).Msg("spi strip ready")
		return d, "spi"

	case "console":
		return led.NewConsole(cfg.LedCount), "console"

	default:
		return fallback(errors.New("unknown driver"), cfg.Driver)
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store.Kind {
	case "valkey":
		return store.NewValkey(cfg.Store.ValkeyAddr, cfg.Store.ValkeyKey)
	case "memory", "":
		return store.NewMemory(), nil
	default:
		return nil, errors.New("unknown store kind " + cfg.Store.Kind)
	}
}
