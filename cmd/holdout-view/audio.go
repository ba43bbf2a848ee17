package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	cueSampleRate = beep.SampleRate(44100)
	hitToneHz     = 220
	lostToneHz    = 110
	cueDuration   = 60 * time.Millisecond
)

// cues plays short sine tones for simulation events; a failed speaker init leaves it silent
type cues struct {
	enabled bool
}

func newCues() (*cues, error) {
	c := &cues{}
	if err := speaker.Init(cueSampleRate, cueSampleRate.N(time.Second/10)); err != nil {
		return c, err
	}
	c.enabled = true
	return c, nil
}

func (c *cues) tone(freq int) {
	if c == nil || !c.enabled {
		return
	}
	sine, err := generators.SineTone(cueSampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(cueSampleRate.N(cueDuration), sine))
}

// hit is played when an enemy strikes a structure
func (c *cues) hit() { c.tone(hitToneHz) }

// lost is played when the last objective falls
func (c *cues) lost() { c.tone(lostToneHz) }

func (c *cues) close() {
	if c != nil && c.enabled {
		speaker.Close()
	}
}
