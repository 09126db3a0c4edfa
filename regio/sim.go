package regio

import (
	"sort"
	"sync"
)

// Device models the registers of one peripheral. off is relative to the
// mapping base; width is 1 or 4 bytes.
type Device interface {
	ReadReg(off uint32, width uint8) uint32
	WriteReg(off uint32, v uint32, width uint8)
}

// Mapping places a Device at [Start, Start+Length).
type Mapping struct {
	Start  uint32
	Length uint32
	Dev    Device
}

func (m Mapping) contains(addr uint32) bool {
	return addr >= m.Start && addr-m.Start < m.Length
}

// Access counts reads and writes seen at one address.
type Access struct {
	Reads  int
	Writes int
}

// Sim is a simulated address space. Mapped ranges dispatch to their Device;
// everything else behaves as plain little-endian RAM that reads zero until written.
type Sim struct {
	mu     sync.Mutex
	maps   []Mapping
	words  map[uint32]uint32
	counts map[uint32]*Access
}

func NewSim() *Sim {
	return &Sim{
		words:  make(map[uint32]uint32),
		counts: make(map[uint32]*Access),
	}
}

// Map attaches dev at [start, start+length). Later mappings win on overlap.
func (s *Sim) Map(start, length uint32, dev Device) {
	s.mu.Lock()
	s.maps = append([]Mapping{{Start: start, Length: length, Dev: dev}}, s.maps...)
	s.mu.Unlock()
}

func (s *Sim) lookup(addr uint32) (Mapping, bool) {
	for _, m := range s.maps {
		if m.contains(addr) {
			return m, true
		}
	}
	return Mapping{}, false
}

func (s *Sim) count(addr uint32, write bool) {
	a := s.counts[addr]
	if a == nil {
		a = &Access{}
		s.counts[addr] = a
	}
	if write {
		a.Writes++
	} else {
		a.Reads++
	}
}

func (s *Sim) read(addr uint32, width uint8) uint32 {
	s.mu.Lock()
	s.count(addr, false)
	m, ok := s.lookup(addr)
	if !ok {
		w := s.words[addr&^3]
		s.mu.Unlock()
		if width == 1 {
			return (w >> (8 * (addr & 3))) & 0xFF
		}
		return w
	}
	s.mu.Unlock()
	// Device callbacks run unlocked so models may use their own locks.
	return m.Dev.ReadReg(addr-m.Start, width)
}

func (s *Sim) write(addr uint32, v uint32, width uint8) {
	s.mu.Lock()
	s.count(addr, true)
	m, ok := s.lookup(addr)
	if !ok {
		if width == 1 {
			shift := 8 * (addr & 3)
			w := s.words[addr&^3]
			s.words[addr&^3] = w&^(0xFF<<shift) | (v&0xFF)<<shift
		} else {
			s.words[addr&^3] = v
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	m.Dev.WriteReg(addr-m.Start, v, width)
}

func (s *Sim) Read32(addr uint32) uint32     { return s.read(addr, 4) }
func (s *Sim) Write32(addr uint32, v uint32) { s.write(addr, v, 4) }
func (s *Sim) Read8(addr uint32) uint8       { return uint8(s.read(addr, 1)) }
func (s *Sim) Write8(addr uint32, v uint8)   { s.write(addr, uint32(v), 1) }

// Accesses returns the read/write counts observed at addr.
func (s *Sim) Accesses(addr uint32) Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.counts[addr]; a != nil {
		return *a
	}
	return Access{}
}

// Touched lists every address accessed so far, ascending.
func (s *Sim) Touched() []uint32 {
	s.mu.Lock()
	out := make([]uint32, 0, len(s.counts))
	for a := range s.counts {
		out = append(out, a)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ResetCounts forgets access statistics.
func (s *Sim) ResetCounts() {
	s.mu.Lock()
	s.counts = make(map[uint32]*Access)
	s.mu.Unlock()
}
