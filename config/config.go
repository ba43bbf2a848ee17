package config

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/maze"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/parameter"
	"github.com/lixenwraith/holdout/system"
)

var (
	ErrUnknownKey = errors.New("unknown config key")
	ErrInvalid    = errors.New("invalid config")
)

// Duration decodes TOML strings such as "16ms"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the root of the TOML document
type Config struct {
	World      World       `toml:"world"`
	Search     Search      `toml:"search"`
	Spawn      Spawn       `toml:"spawn"`
	Workers    Workers     `toml:"workers"`
	Home       Home        `toml:"home"`
	Layout     Layout      `toml:"layout"`
	Structures []Structure `toml:"structures"`
	Server     Server      `toml:"server"`
}

type World struct {
	Extent   float64 `toml:"extent"`
	CellSize float64 `toml:"cell_size"`
	Seed     uint64  `toml:"seed"`
}

type Search struct {
	Heuristic     string `toml:"heuristic"`
	MaxExpansions int    `toml:"max_expansions"`
}

type Spawn struct {
	Interval float64 `toml:"interval"`
}

type Workers struct {
	Count       int     `toml:"count"`
	Speed       float64 `toml:"speed"`
	Health      float64 `toml:"health"`
	CollectTime float64 `toml:"collect_time"`
	DepositTime float64 `toml:"deposit_time"`
	RetryDelay  float64 `toml:"retry_delay"`
	AutoCollect bool    `toml:"auto_collect"`
}

// Home is the objective footprint in cells
type Home struct {
	X      int     `toml:"x"`
	Y      int     `toml:"y"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Health float64 `toml:"health"`
}

// Layout generates a barrier maze around the configured structures
type Layout struct {
	Maze     bool    `toml:"maze"`
	Scale    int     `toml:"scale"`
	Braiding float64 `toml:"braiding"`
	Margin   int     `toml:"margin"`
	Seed     uint64  `toml:"seed"` // 0 uses world.seed
}

// Structure is one [[structures]] entry; Kind is "objective" or "barrier"
type Structure struct {
	ID     uint32  `toml:"id"`
	Kind   string  `toml:"kind"`
	X      int     `toml:"x"`
	Y      int     `toml:"y"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Health float64 `toml:"health"`
}

type Server struct {
	Addr           string   `toml:"addr"`
	Tick           Duration `toml:"tick"`
	BroadcastEvery int      `toml:"broadcast_every"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		World: World{
			Extent:   parameter.WorldExtent,
			CellSize: parameter.CellSize,
			Seed:     1,
		},
		Search: Search{
			Heuristic:     navigation.HeuristicChebyshev.String(),
			MaxExpansions: parameter.NavSearchMaxExpansions,
		},
		Spawn: Spawn{Interval: parameter.EnemySpawnInterval},
		Workers: Workers{
			Count:       2,
			Speed:       parameter.WorkerSpeed,
			Health:      parameter.WorkerHealth,
			CollectTime: parameter.WorkerCollectTime,
			DepositTime: parameter.WorkerDepositTime,
			RetryDelay:  parameter.WorkerRetryDelay,
			AutoCollect: true,
		},
		Home: Home{
			X:      parameter.BaseCellX,
			Y:      parameter.BaseCellY,
			Width:  parameter.BaseCellWidth,
			Height: parameter.BaseCellHeight,
			Health: parameter.BaseMaxHealth,
		},
		Layout: Layout{
			Scale:    parameter.LayoutScale,
			Braiding: parameter.LayoutBraiding,
			Margin:   parameter.LayoutMargin,
		},
		Server: Server{
			Addr:           parameter.FeedAddr,
			Tick:           Duration{parameter.TickInterval},
			BroadcastEvery: parameter.FeedBroadcastEvery,
		},
	}
}

// Parse overlays TOML data on Default and validates the result
// Keys that map to no field are rejected so typos do not pass silently
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "config parse")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.Wrap(ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path; an empty path yields Default
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config read")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

// Validate checks value ranges and structure references
// Footprint bounds and overlaps are checked at placement time by the navigator
func (c *Config) Validate() error {
	if c.World.Extent <= 0 || c.World.CellSize <= 0 {
		return invalid("world extent %v and cell_size %v must be positive", c.World.Extent, c.World.CellSize)
	}
	if _, ok := navigation.ParseHeuristic(c.Search.Heuristic); !ok {
		return invalid("search.heuristic %q", c.Search.Heuristic)
	}
	if c.Search.MaxExpansions < 0 {
		return invalid("search.max_expansions %d is negative", c.Search.MaxExpansions)
	}
	if c.Spawn.Interval < 0 {
		return invalid("spawn.interval %v is negative", c.Spawn.Interval)
	}
	w := c.Workers
	if w.Count < 0 || w.Speed <= 0 || w.Health <= 0 {
		return invalid("workers count %d speed %v health %v", w.Count, w.Speed, w.Health)
	}
	if w.CollectTime < 0 || w.DepositTime < 0 || w.RetryDelay < 0 {
		return invalid("workers times must not be negative")
	}
	if c.Home.Width <= 0 || c.Home.Height <= 0 || c.Home.Health <= 0 {
		return invalid("home %dx%d health %v", c.Home.Width, c.Home.Height, c.Home.Health)
	}

	if l := c.Layout; l.Maze && (l.Scale < 1 || l.Margin < 0 || l.Braiding < 0 || l.Braiding > 1) {
		return invalid("layout scale %d margin %d braiding %v", l.Scale, l.Margin, l.Braiding)
	}

	seen := map[uint32]bool{uint32(system.HomeID): true}
	for i, s := range c.Structures {
		if s.ID == 0 || seen[s.ID] {
			return invalid("structures[%d] id %d is reserved or duplicated", i, s.ID)
		}
		seen[s.ID] = true
		if _, ok := parseKind(s.Kind); !ok {
			return invalid("structures[%d] kind %q", i, s.Kind)
		}
		if s.Width <= 0 || s.Height <= 0 {
			return invalid("structures[%d] size %dx%d", i, s.Width, s.Height)
		}
	}

	if c.Server.Tick.Duration <= 0 || c.Server.BroadcastEvery <= 0 {
		return invalid("server tick %v and broadcast_every %d must be positive", c.Server.Tick, c.Server.BroadcastEvery)
	}
	return nil
}

func parseKind(kind string) (navigation.StructureKind, bool) {
	switch strings.ToLower(kind) {
	case "", "objective":
		return navigation.KindObjective, true
	case "barrier":
		return navigation.KindBarrier, true
	}
	return navigation.KindObjective, false
}

// Battlefield converts a validated config into the simulation setup
func (c *Config) Battlefield() system.BattlefieldConfig {
	heuristic, _ := navigation.ParseHeuristic(c.Search.Heuristic)

	home := core.Area{X: c.Home.X, Y: c.Home.Y, Width: c.Home.Width, Height: c.Home.Height}
	structures := make([]navigation.Structure, 0, len(c.Structures))
	for _, s := range c.Structures {
		kind, _ := parseKind(s.Kind)
		structures = append(structures, navigation.Structure{
			ID:     navigation.StructureID(s.ID),
			Kind:   kind,
			Area:   core.Area{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height},
			Health: s.Health,
		})
	}
	if c.Layout.Maze {
		structures = append(structures, c.mazeBarriers(home, structures)...)
	}

	return system.BattlefieldConfig{
		Nav: navigation.Config{
			Extent:        c.World.Extent,
			CellSize:      c.World.CellSize,
			Heuristic:     heuristic,
			MaxExpansions: c.Search.MaxExpansions,
		},
		Seed:          c.World.Seed,
		Home:          home,
		HomeHealth:    c.Home.Health,
		Structures:    structures,
		SpawnInterval: c.Spawn.Interval,
		Workers:       c.Workers.Count,
		WorkerSpeed:   c.Workers.Speed,
		WorkerHealth:  c.Workers.Health,
		CollectTime:   c.Workers.CollectTime,
		DepositTime:   c.Workers.DepositTime,
		RetryDelay:    c.Workers.RetryDelay,
		AutoCollect:   c.Workers.AutoCollect,
	}
}

// mazeBarriers lays a barrier maze that leaves home and every listed structure clear
// Generated ids follow the highest configured id
func (c *Config) mazeBarriers(home core.Area, placed []navigation.Structure) []navigation.Structure {
	keep := []core.Area{home}
	next := system.HomeID
	for _, s := range placed {
		keep = append(keep, s.Area)
		next = max(next, s.ID)
	}

	seed := c.Layout.Seed
	if seed == 0 {
		seed = c.World.Seed
	}
	side := parameter.GridSide(c.World.Extent, c.World.CellSize)
	areas := maze.Barriers(maze.Config{
		Side:     side,
		Scale:    c.Layout.Scale,
		Braiding: c.Layout.Braiding,
		Seed:     seed,
		Keep:     keep,
		Margin:   c.Layout.Margin,
	})

	out := make([]navigation.Structure, len(areas))
	for i, a := range areas {
		next++
		out[i] = navigation.Structure{ID: next, Kind: navigation.KindBarrier, Area: a}
	}
	return out
}
