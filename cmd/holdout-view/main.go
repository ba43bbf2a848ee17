package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/config"
	"github.com/lixenwraith/holdout/feed"
	"github.com/lixenwraith/holdout/logger"
	"github.com/lixenwraith/holdout/status"
	"github.com/lixenwraith/holdout/system"
)

const maxSpeed = 8

var (
	configFlag = flag.String("config", "", "Path to TOML config (defaults when empty)")
	logFlag    = flag.String("log", "holdout-view.log", "Log file; stdout belongs to the terminal")
	strideFlag = flag.Int("stride", 2, "Cells per character when yanking the board")
	muteFlag   = flag.Bool("mute", false, "Disable audio cues")
)

type viewer struct {
	screen tcell.Screen
	b      *system.Battlefield
	log    logrus.FieldLogger
	cues   *cues
	opts   drawOptions
	lost   bool
}

func main() {
	flag.Parse()

	logFile, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logger.Init(logFile)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	b, err := system.NewBattlefield(cfg.Battlefield(), status.NewRegistry(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build battlefield: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Panic Recovery: restore the terminal before printing the trace
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mHOLDOUT VIEW CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	v := &viewer{
		screen: screen,
		b:      b,
		log:    log,
		opts:   drawOptions{showField: true, speed: 1},
	}
	if !*muteFlag {
		c, err := newCues()
		if err != nil {
			log.WithError(err).Warn("Audio initialization failed, continuing without audio")
		}
		v.cues = c
		defer c.close()
	}

	v.run(cfg.Server.Tick.Duration)
}

func (v *viewer) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	dt := interval.Seconds()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			if !v.opts.paused {
				for i := 0; i < v.opts.speed; i++ {
					v.step(dt)
				}
			}
			drawFrame(v.screen, v.b, v.opts)
			v.screen.Show()
		}
	}
}

func (v *viewer) step(dt float64) {
	r := v.b.Tick(dt)
	if len(r.Hits) > 0 {
		v.cues.hit()
		for _, h := range r.Hits {
			v.log.WithFields(logrus.Fields{
				"tick":      r.Tick,
				"enemy":     h.Enemy,
				"structure": h.Structure,
				"destroyed": h.Destroyed,
			}).Info("Structure hit")
		}
	}
	if !v.lost && v.b.BaseHealth() <= 0 {
		v.lost = true
		v.opts.paused = true
		v.opts.message = "base lost"
		v.cues.lost()
		v.log.WithField("tick", r.Tick).Warn("Every objective destroyed")
	}
}

// handleEvent returns false when the viewer should exit
func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			return v.handleRune(ev.Rune())
		}
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		v.opts.paused = !v.opts.paused
	case 'f':
		v.opts.showField = !v.opts.showField
	case 's':
		e := v.b.Spawn()
		v.opts.message = fmt.Sprintf("spawned %d", e.ID)
	case 'c':
		if id, ok := v.b.CollectNext(); ok {
			v.opts.message = fmt.Sprintf("collecting %d", id)
		} else {
			v.opts.message = "nothing to collect"
		}
	case '+', '=':
		v.opts.speed = min(v.opts.speed+1, maxSpeed)
	case '-':
		v.opts.speed = max(v.opts.speed-1, 1)
	case 'y':
		if err := clipboard.WriteAll(feed.RenderASCII(v.b, *strideFlag)); err != nil {
			v.log.WithError(err).Warn("Clipboard write failed")
			v.opts.message = "clipboard unavailable"
		} else {
			v.opts.message = "board copied"
		}
	}
	return true
}
