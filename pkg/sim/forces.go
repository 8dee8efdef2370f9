package sim

import "math"

// Tick advances the simulation by one step, mutating node positions and
// velocities in place. Once alpha falls below the resting threshold the
// tick is a no-op until Reheat.
func (s *State) Tick() {
	if len(s.Nodes) == 0 || s.alpha < s.cfg.AlphaMin {
		return
	}

	s.applyLinkForce()
	s.applyChargeForce()
	s.applyCenterForces()
	s.integrate()
	s.resolveCollisions()

	s.alpha -= s.alpha * s.cfg.AlphaDecay
}

// applyLinkForce pulls connected nodes toward their rest separation at a
// modest strength so it never dominates the repulsion field.
func (s *State) applyLinkForce() {
	for _, e := range s.Edges {
		a, b := s.Nodes[e.Source], s.Nodes[e.Target]
		dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if dist < 1e-6 {
			// Coincident endpoints: nudge deterministically off each other.
			dx, dist = 1e-3, 1e-3
		}
		f := (dist - e.Rest) / dist * s.cfg.LinkStrength * s.alpha
		hx, hy, hz := dx*f*0.5, dy*f*0.5, dz*f*0.5
		a.VX += hx
		a.VY += hy
		a.VZ += hz
		b.VX -= hx
		b.VY -= hy
		b.VZ -= hz
	}
}

// applyChargeForce pushes every node pair apart with inverse-square falloff.
// Node counts here are small (hundreds), so the O(n^2) sweep is cheaper than
// maintaining an octree would be worth.
func (s *State) applyChargeForce() {
	for i := 0; i < len(s.Nodes); i++ {
		a := s.Nodes[i]
		for j := i + 1; j < len(s.Nodes); j++ {
			b := s.Nodes[j]
			dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
			d2 := dx*dx + dy*dy + dz*dz
			if d2 < 1 {
				d2 = 1
			}
			dist := math.Sqrt(d2)
			// Charges are negative; the mean of the pair sets the push.
			m := -(a.charge + b.charge) / 2 * s.alpha / d2
			ux, uy, uz := dx/dist, dy/dist, dz/dist
			a.VX += ux * m
			a.VY += uy * m
			a.VZ += uz * m
			b.VX -= ux * m
			b.VY -= uy * m
			b.VZ -= uz * m
		}
	}
}

// applyCenterForces pulls the system toward the origin in the XY plane and
// applies the weaker z pull that gives the layout its shallow-dish shape.
func (s *State) applyCenterForces() {
	for _, n := range s.Nodes {
		n.VX -= n.X * s.cfg.CenterStrength * s.alpha
		n.VY -= n.Y * s.cfg.CenterStrength * s.alpha
		n.VZ -= n.Z * s.cfg.ZStrength * s.alpha
	}
}

// integrate applies damped velocities to positions and enforces pins.
// A pinned axis snaps to its pin and sheds its velocity.
func (s *State) integrate() {
	keep := 1 - s.cfg.VelocityDecay
	for _, n := range s.Nodes {
		n.VX *= keep
		n.VY *= keep
		n.VZ *= keep
		n.X += n.VX
		n.Y += n.VY
		n.Z += n.VZ
		if n.FX != nil {
			n.X, n.VX = *n.FX, 0
		}
		if n.FY != nil {
			n.Y, n.VY = *n.FY, 0
		}
		if n.FZ != nil {
			n.Z, n.VZ = *n.FZ, 0
		}
	}
}

// resolveCollisions separates overlapping pairs by displacing each half the
// overlap along the contact normal. Pinned axes do not move.
func (s *State) resolveCollisions() {
	for i := 0; i < len(s.Nodes); i++ {
		a := s.Nodes[i]
		ra := a.Radius + s.collidePad(a)
		for j := i + 1; j < len(s.Nodes); j++ {
			b := s.Nodes[j]
			rb := b.Radius + s.collidePad(b)
			dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			minDist := ra + rb
			if dist >= minDist {
				continue
			}
			if dist < 1e-6 {
				dx, dist = minDist*1e-3, minDist*1e-3
			}
			push := (minDist - dist) / dist * 0.5
			px, py, pz := dx*push, dy*push, dz*push
			if a.FX == nil {
				a.X -= px
			}
			if a.FY == nil {
				a.Y -= py
			}
			if a.FZ == nil {
				a.Z -= pz
			}
			if b.FX == nil {
				b.X += px
			}
			if b.FY == nil {
				b.Y += py
			}
			if b.FZ == nil {
				b.Z += pz
			}
		}
	}
}

func (s *State) collidePad(n *Node) float64 {
	if n.Graph.IsCategory() {
		return s.cfg.CollidePadCategory
	}
	return s.cfg.CollidePadEntity
}
