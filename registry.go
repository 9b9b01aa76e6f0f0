package bluelua

import lua "github.com/yuin/gopher-lua"

// Ref is a registry reference: the key of a value pinned in a State's
// registry arena. Pinned values stay reachable until released.
type Ref int

// NoRef is the sentinel for "no reference". It is the zero value, so a struct
// holding Refs starts out unbound.
const NoRef Ref = 0

// refsRegistryKey is where the arena table lives in the VM registry.
const refsRegistryKey = "bluelua.refs"

// RegistryStats counts registry arena traffic.
type RegistryStats struct {
	Pins     int // successful Ref calls
	Releases int // Unref calls that released a live reference
	Live     int // references currently pinned
	PeakLive int // highest Live seen
}

// Ref pins the value at stack index idx and returns its reference. The stack
// is unchanged.
func (s *State) Ref(idx int) Ref {
	return s.RefValue(s.L.Get(idx))
}

// RefValue pins v and returns its reference. Nil is pinned like any other
// value. A closed State yields NoRef.
func (s *State) RefValue(v lua.LValue) Ref {
	if s.closed {
		return NoRef
	}
	if v == nil {
		v = lua.LNil
	}

	var r Ref
	if n := len(s.freeRefs); n > 0 {
		r = s.freeRefs[n-1]
		s.freeRefs = s.freeRefs[:n-1]
	} else {
		r = s.nextRef
		s.nextRef++
	}
	s.refs.RawSetInt(int(r), v)
	s.liveRefs[r] = struct{}{}

	s.stats.Pins++
	s.stats.Live++
	if s.stats.Live > s.stats.PeakLive {
		s.stats.PeakLive = s.stats.Live
	}
	return r
}

// PushRef pushes the value pinned under r. NoRef and released references
// push nil.
func (s *State) PushRef(r Ref) {
	if r == NoRef {
		s.L.Push(lua.LNil)
		return
	}
	s.L.Push(s.refs.RawGetInt(int(r)))
}

// Unref releases r. Releasing NoRef or an already released reference does
// nothing.
func (s *State) Unref(r Ref) {
	if s.closed || r == NoRef {
		return
	}
	if _, ok := s.liveRefs[r]; !ok {
		return
	}
	delete(s.liveRefs, r)
	s.refs.RawSetInt(int(r), lua.LNil)
	s.freeRefs = append(s.freeRefs, r)
	s.stats.Releases++
	s.stats.Live--
}

// RegistryStats returns the arena counters.
func (s *State) RegistryStats() RegistryStats {
	return s.stats
}
