package port

import "fmt"

// Manager is the registry of directed connections, looked up by source or
// destination Port ID (spec §3 PortConnectionManager). Manager does no
// locking of its own and nothing in this module swaps Manager instances;
// spec §5 places topology mutations on the control thread, as the
// teacher's engine/queue.Queue serializes them.
type Manager struct {
	ports map[ID]*Port
	conns []*Connection
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{ports: make(map[ID]*Port)}
}

// Register adds a Port to the registry so it can be found by ID.
func (m *Manager) Register(p *Port) {
	m.ports[p.id] = p
}

// Unregister removes a Port, along with any connections touching it.
func (m *Manager) Unregister(id ID) {
	p, ok := m.ports[id]
	if !ok {
		return
	}
	delete(m.ports, id)
	kept := m.conns[:0]
	for _, c := range m.conns {
		if c.src == p || c.dst == p {
			c.Disconnect()
			continue
		}
		kept = append(kept, c)
	}
	m.conns = kept
}

// Lookup resolves a Port by its stable ID.
func (m *Manager) Lookup(id ID) (*Port, bool) {
	p, ok := m.ports[id]
	return p, ok
}

// Connect creates and registers a connection between two ports by ID.
func (m *Manager) Connect(src, dst ID, multiplier float32, locked bool) (*Connection, error) {
	sp, ok := m.ports[src]
	if !ok {
		return nil, fmt.Errorf("port: unknown source port %d", src)
	}
	dp, ok := m.ports[dst]
	if !ok {
		return nil, fmt.Errorf("port: unknown destination port %d", dst)
	}
	c, err := sp.Connect(dp, multiplier, locked)
	if err != nil {
		return nil, err
	}
	m.conns = append(m.conns, c)
	return c, nil
}

// Disconnect removes a previously created connection from the registry
// and from its destination port's incoming list.
func (m *Manager) Disconnect(c *Connection) {
	for i, cur := range m.conns {
		if cur == c {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			break
		}
	}
	c.Disconnect()
}

// ByDestination returns every connection feeding dst.
func (m *Manager) ByDestination(dst ID) []*Connection {
	var out []*Connection
	for _, c := range m.conns {
		if c.Destination() == dst {
			out = append(out, c)
		}
	}
	return out
}

// BySource returns every connection fed by src.
func (m *Manager) BySource(src ID) []*Connection {
	var out []*Connection
	for _, c := range m.conns {
		if c.Source() == src {
			out = append(out, c)
		}
	}
	return out
}

// All returns every registered connection.
func (m *Manager) All() []*Connection {
	return m.conns
}

// Ports returns every registered port.
func (m *Manager) Ports() []*Port {
	out := make([]*Port, 0, len(m.ports))
	for _, p := range m.ports {
		out = append(out, p)
	}
	return out
}

// Realloc resizes every registered audio/CV port's buffer to the new
// block length, used when the engine handles a BufferSizeChange event
// (spec §4.10).
func (m *Manager) Realloc(blockLength int) {
	for _, p := range m.ports {
		p.Realloc(blockLength)
	}
}
