package navigation

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/logger"
	"github.com/lixenwraith/holdout/parameter"
)

// Config holds grid geometry and search tuning
type Config struct {
	Extent        float64
	CellSize      float64
	Heuristic     Heuristic
	MaxExpansions int
}

// DefaultConfig returns the 251x251 battlefield used by the game
func DefaultConfig() Config {
	return Config{
		Extent:        parameter.WorldExtent,
		CellSize:      parameter.CellSize,
		Heuristic:     HeuristicChebyshev,
		MaxExpansions: parameter.NavSearchMaxExpansions,
	}
}

// Navigator owns the grid, the structure registry and the cached flow field
// It is the single writer of grid state; callers pass it by reference, never copy it
type Navigator struct {
	grid       *GridMap
	structures map[StructureID]*Structure

	builder FlowFieldBuilder
	finder  PathFinder

	// dirty latches on any structure mutation, cleared by EnsureBuilt
	dirty     bool
	rebuilds  int
	lastStats FieldStats

	log logrus.FieldLogger
}

// NewNavigator creates an empty battlefield; log may be nil
func NewNavigator(cfg Config, log logrus.FieldLogger) (*Navigator, error) {
	grid, err := NewGridMap(cfg.Extent, cfg.CellSize, nil)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Navigator{
		grid:       grid,
		structures: make(map[StructureID]*Structure),
		finder:     PathFinder{Heuristic: cfg.Heuristic, MaxExpansions: cfg.MaxExpansions},
		dirty:      true,
		log:        log,
	}, nil
}

// Grid exposes the grid for read-only consumers
func (n *Navigator) Grid() *GridMap { return n.grid }

// AddStructure registers and places s, invalidating the flow field
func (n *Navigator) AddStructure(s Structure) error {
	if _, exists := n.structures[s.ID]; exists {
		return errors.Wrapf(ErrDuplicateStructure, "structure %d", s.ID)
	}
	if s.MaxHealth <= 0 {
		s.MaxHealth = s.Health
	}
	if err := n.grid.place(s); err != nil {
		n.log.WithFields(logrus.Fields{"structure": s.ID, "area": s.Area}).WithError(err).Warn("structure placement rejected")
		return err
	}
	n.structures[s.ID] = &s
	n.dirty = true
	n.log.WithFields(logrus.Fields{
		"structure": s.ID,
		"kind":      s.Kind.String(),
		"cells":     s.Area.Width * s.Area.Height,
	}).Debug("structure placed")
	return nil
}

// RemoveStructure clears the footprint of id and invalidates the flow field
func (n *Navigator) RemoveStructure(id StructureID) (Structure, bool) {
	s, ok := n.structures[id]
	if !ok {
		return Structure{}, false
	}
	cleared := n.grid.clear(id, s.Area)
	delete(n.structures, id)
	n.dirty = true
	n.log.WithFields(logrus.Fields{"structure": id, "cells": cleared}).Debug("structure removed")
	return *s, true
}

// DamageStructure subtracts amount from the health of id
// The structure is removed once health drops to or below zero; destroyed reports that
func (n *Navigator) DamageStructure(id StructureID, amount float64) (destroyed bool) {
	s, ok := n.structures[id]
	if !ok {
		return false
	}
	s.Health -= amount
	if s.Health > 0 {
		return false
	}
	n.log.WithFields(logrus.Fields{"structure": id, "kind": s.Kind.String()}).Info("structure destroyed")
	n.RemoveStructure(id)
	return true
}

// Structure returns a copy of a registered structure
func (n *Navigator) Structure(id StructureID) (Structure, bool) {
	s, ok := n.structures[id]
	if !ok {
		return Structure{}, false
	}
	return *s, true
}

// Structures returns copies of every registered structure sorted by id
func (n *Navigator) Structures() []Structure {
	out := make([]Structure, 0, len(n.structures))
	for _, s := range n.structures {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dirty reports whether the field needs a rebuild
func (n *Navigator) Dirty() bool { return n.dirty }

// Rebuilds returns the number of flow field builds so far
func (n *Navigator) Rebuilds() int { return n.rebuilds }

// FieldStats returns the statistics of the latest build
func (n *Navigator) FieldStats() FieldStats { return n.lastStats }

// EnsureBuilt rebuilds the flow field if a structure changed since the last build
// Returns true if a rebuild ran
func (n *Navigator) EnsureBuilt() bool {
	if !n.dirty {
		return false
	}
	list := make([]*Structure, 0, len(n.structures))
	for _, s := range n.structures {
		list = append(list, s)
	}
	n.lastStats = n.builder.Build(n.grid, list)
	n.dirty = false
	n.rebuilds++
	n.log.WithFields(logrus.Fields{
		"rebuilds": n.rebuilds,
		"seeds":    n.lastStats.Seeds,
		"reached":  n.lastStats.Reached,
		"max_ring": n.lastStats.MaxRing,
	}).Debug("flow field rebuilt")
	return true
}

// WorldToGrid maps a world position onto its clamped cell
func (n *Navigator) WorldToGrid(pos core.Vec2) core.Point {
	return n.grid.ToCell(pos)
}

// GridToWorld returns the world-space center of a cell
func (n *Navigator) GridToWorld(p core.Point) core.Vec2 {
	return n.grid.ToWorld(p)
}

// QueryDirection returns the flow direction under pos, false for occupied or unreachable cells
func (n *Navigator) QueryDirection(pos core.Vec2) (Direction, bool) {
	n.EnsureBuilt()
	d := n.grid.CellAt(n.grid.ToCell(pos)).Dir
	return d, d != DirNone
}

// QueryObjectiveReached returns the objective whose footprint covers pos
func (n *Navigator) QueryObjectiveReached(pos core.Vec2) (StructureID, bool) {
	n.EnsureBuilt()
	occ := n.grid.CellAt(n.grid.ToCell(pos)).Occupant
	if occ == 0 {
		return 0, false
	}
	if s, ok := n.structures[occ]; !ok || s.Kind != KindObjective {
		return 0, false
	}
	return occ, true
}

// FindPath returns waypoints from start to goal cell, false if unreachable
func (n *Navigator) FindPath(start, goal core.Point) ([]core.Point, bool) {
	return n.FindPathToArea(start, core.PointArea(goal))
}

// FindPathToArea returns waypoints from start to any cell of goal
func (n *Navigator) FindPathToArea(start core.Point, goal core.Area) ([]core.Point, bool) {
	path, ok := n.finder.FindPath(n.grid, start, goal)
	if !ok {
		n.log.WithFields(logrus.Fields{
			"start":      start,
			"goal":       goal,
			"expansions": n.finder.LastExpansions,
		}).Debug("no path")
	}
	return path, ok
}

// FindPathToStructure routes from start onto the footprint of structure id
func (n *Navigator) FindPathToStructure(start core.Point, id StructureID) ([]core.Point, bool) {
	s, ok := n.structures[id]
	if !ok {
		return nil, false
	}
	return n.FindPathToArea(start, s.Area)
}

// ExitCell returns p when walkable, otherwise the walkable perimeter cell of the structure
// covering p that lies closest to p; ties keep the left, bottom, right, top scan order
func (n *Navigator) ExitCell(p core.Point) (core.Point, bool) {
	if n.grid.Walkable(p) {
		return p, true
	}
	if !n.grid.InBounds(p) {
		return p, false
	}
	s, ok := n.structures[n.grid.CellAt(p).Occupant]
	if !ok {
		return p, false
	}
	a := s.Area
	best, bestDist := p, -1
	try := func(c core.Point) {
		if !n.grid.Walkable(c) {
			return
		}
		if d := c.Manhattan(p); bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	for y := a.Y; y < a.Top(); y++ {
		try(core.Point{X: a.X - 1, Y: y})
	}
	for x := a.X; x < a.Right(); x++ {
		try(core.Point{X: x, Y: a.Y - 1})
	}
	for y := a.Y; y < a.Top(); y++ {
		try(core.Point{X: a.Right(), Y: y})
	}
	for x := a.X; x < a.Right(); x++ {
		try(core.Point{X: x, Y: a.Top()})
	}
	return best, bestDist >= 0
}
