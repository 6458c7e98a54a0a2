// Command sceneedit edits a stored scene without a browser: it loads the
// scene from a studio, applies an action script, optionally plays it over
// the live channel, and saves the result.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/client"
	"github.com/coreman2200/ledstudio/internal/config"
	"github.com/coreman2200/ledstudio/internal/editor"
	"github.com/coreman2200/ledstudio/internal/live"
	"github.com/coreman2200/ledstudio/internal/save"
	"github.com/coreman2200/ledstudio/internal/scene"
	"github.com/coreman2200/ledstudio/internal/session"
)

func main() {
	var (
		studioURL  = flag.String("studio", "http://localhost:5000", "studio base URL")
		sceneID    = flag.String("scene", "", "scene id; empty creates a new scene")
		scriptPath = flag.String("script", "", "path to a JSON array of editor actions")
		liveOn     = flag.Bool("live", false, "push the focused frame to the studio while editing")
		play       = flag.Duration("play", 0, "play the edited scene for this long before saving")
		show       = flag.Bool("show", false, "show the focused frame on the strip after saving")
		strip      = flag.String("strip", "", "after saving, play the scene on the strip: loop | once")
		dry        = flag.Bool("dry-run", false, "apply the script locally and report the result without saving")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if err := cfg.Merge(*configPath); err != nil {
		log.Debug().Err(err).Str("path", *configPath).Msg("no config; using defaults")
	}

	var actions []editor.Action
	if *strip != "" && *strip != "loop" && *strip != "once" {
		log.Fatal().Str("strip", *strip).Msg("strip must be loop or once")
	}
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatal().Err(err).Msg("read script")
		}
		if actions, err = editor.DecodeActions(data); err != nil {
			log.Fatal().Err(err).Str("script", *scriptPath).Msg("decode script")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*studioURL)
	id := *sceneID
	if id == "" {
		var err error
		if id, err = c.CreateScene(ctx); err != nil {
			log.Fatal().Err(err).Msg("create scene")
		}
		log.Info().Str("scene", id).Msg("created scene")
	}
	sc, err := c.GetScene(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Str("scene", id).Msg("load scene")
	}

	if *dry {
		st, changed := dryRun(sc, actions)
		log.Info().Str("scene", id).Int("actions", len(actions)).Int("frames", len(st.Scene.Frames)).Int("leds", st.Scene.LedCount()).Bool("changed", changed).Msg("dry run; nothing saved")
		return
	}

	saver := save.New(c.PutScene, cfg.SaveWindow())
	opts := session.Options{Saver: saver, LiveTimeout: cfg.LiveTimeout()}
	var lc *live.Client
	if *liveOn {
		lc = live.NewClient(c.LiveURL())
		if err := lc.InitRealtime(ctx); err != nil {
			log.Warn().Err(err).Msg("live channel unavailable")
		}
		opts.Live = lc
	}
	sess := session.New(sc, opts)
	if *liveOn {
		sess.Dispatch(editor.SetState{Key: editor.KeyIsLiveEnabled, Value: true})
	}

	st := sess.DispatchAll(actions...)
	log.Info().Str("scene", id).Int("actions", len(actions)).Int("frames", len(st.Scene.Frames)).Int("leds", st.Scene.LedCount()).Msg("script applied")

	if *play > 0 {
		sess.TogglePlayback()
		log.Info().Dur("for", *play).Int("fps", st.Scene.FPS).Msg("playing")
		select {
		case <-time.After(*play):
		case <-ctx.Done():
		}
		sess.TogglePlayback()
	}

	// Saving and cleanup run even after an interrupt.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sess.Close(saveCtx); err != nil {
		log.Error().Err(err).Str("scene", id).Msg("save failed")
	}
	if err := saver.Close(saveCtx); err != nil {
		log.Error().Err(err).Msg("saver close")
	}
	if lc != nil {
		_ = lc.Close()
	}
	if err := saver.Err(); err != nil {
		os.Exit(1)
	}
	if t := saver.LastSaved(); !t.IsZero() {
		log.Info().Str("scene", id).Time("at", t).Msg("saved")
	} else {
		log.Info().Str("scene", id).Msg("nothing to save")
	}

	if *show {
		final := sess.State()
		if err := c.ShowFrame(saveCtx, id, final.CurrentFrame); err != nil {
			log.Error().Err(err).Int("frame", final.CurrentFrame).Msg("show frame")
			os.Exit(1)
		}
	}

	if *strip != "" {
		if err := c.Play(saveCtx, id, *strip == "loop"); err != nil {
			log.Error().Err(err).Str("scene", id).Msg("play on strip")
			os.Exit(1)
		}
		log.Info().Str("scene", id).Str("mode", *strip).Msg("playing on the strip")
	}
}

// dryRun reduces actions over sc without a session and reports whether the
// scene would change.
func dryRun(sc scene.Scene, actions []editor.Action) (editor.State, bool) {
	st := editor.ReduceAll(editor.NewState(sc), actions...)
	return st, !reflect.DeepEqual(sc, st.Scene)
}
