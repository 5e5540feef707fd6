package buffer

// listTag identifies which of the three logical lists a node currently
// belongs to.
type listTag uint8

const (
	tagNone listTag = iota
	tagHot
	tagCold
	tagFree
)

const sentinel = -1

// lruNode is one entry in the arena: a frame index plus the doubly linked
// list pointers for whichever of hot/cold/free currently owns it. Using
// indices into a flat arena (rather than pointers, and rather than
// container/list) keeps eviction O(1) without per-node heap allocation or
// aliasing hazards.
type lruNode struct {
	frame      int
	tag        listTag
	prev, next int
}

type list struct {
	head, tail int
	size       int
}

func newList() list { return list{head: sentinel, tail: sentinel} }

// lruManager implements the three-generation hot/cold/free replacement
// policy described in §4.4.1: fresh frames enter cold, repeated access
// promotes into hot, and demotion cascades hot -> cold -> free on
// overflow. Eviction always prefers free, then cold, then hot.
type lruManager struct {
	nodes               []lruNode
	frameToNode         map[int]int
	hot, cold, free     list
	hotCap, coldCap, freeCap int
}

// newLRUManager builds a manager with the given list capacities.
func newLRUManager(hotCap, coldCap, freeCap int) *lruManager {
	return &lruManager{
		frameToNode: make(map[int]int),
		hot:         newList(),
		cold:        newList(),
		free:        newList(),
		hotCap:      hotCap,
		coldCap:     coldCap,
		freeCap:     freeCap,
	}
}

func (m *lruManager) listFor(tag listTag) *list {
	switch tag {
	case tagHot:
		return &m.hot
	case tagCold:
		return &m.cold
	case tagFree:
		return &m.free
	default:
		return nil
	}
}

func (m *lruManager) pushFront(tag listTag, nodeIdx int) {
	l := m.listFor(tag)
	n := &m.nodes[nodeIdx]
	n.tag = tag
	n.prev = sentinel
	n.next = l.head
	if l.head != sentinel {
		m.nodes[l.head].prev = nodeIdx
	}
	l.head = nodeIdx
	if l.tail == sentinel {
		l.tail = nodeIdx
	}
	l.size++
}

func (m *lruManager) unlink(nodeIdx int) listTag {
	n := &m.nodes[nodeIdx]
	l := m.listFor(n.tag)
	if l == nil {
		return tagNone
	}
	if n.prev != sentinel {
		m.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != sentinel {
		m.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.size--
	prevTag := n.tag
	n.tag = tagNone
	n.prev, n.next = sentinel, sentinel
	return prevTag
}

func (m *lruManager) popBack(tag listTag) (int, bool) {
	l := m.listFor(tag)
	if l.tail == sentinel {
		return 0, false
	}
	idx := l.tail
	m.unlink(idx)
	return idx, true
}

func (m *lruManager) nodeFor(frame int) int {
	if idx, ok := m.frameToNode[frame]; ok {
		return idx
	}
	idx := len(m.nodes)
	m.nodes = append(m.nodes, lruNode{frame: frame, tag: tagNone, prev: sentinel, next: sentinel})
	m.frameToNode[frame] = idx
	return idx
}

// add inserts a frame at the front of cold, cascading demotion into free
// (and dropping from free) if the capacities are exceeded.
func (m *lruManager) add(frame int) {
	idx := m.nodeFor(frame)
	if m.nodes[idx].tag != tagNone {
		m.unlink(idx)
	}
	m.pushFront(tagCold, idx)
	m.demoteOverflow()
}

func (m *lruManager) demoteOverflow() {
	if m.cold.size > m.coldCap {
		if victim, ok := m.popBack(tagCold); ok {
			m.pushFront(tagFree, victim)
		}
	}
	if m.free.size > m.freeCap {
		m.popBack(tagFree)
	}
}

// access promotes a frame to the front of hot, cascading hot -> cold ->
// free demotion on overflow exactly as add() does for cold -> free.
func (m *lruManager) access(frame int) {
	idx, ok := m.frameToNode[frame]
	if !ok {
		m.add(frame)
		idx = m.frameToNode[frame]
	}
	if m.nodes[idx].tag == tagHot {
		m.unlink(idx)
		m.pushFront(tagHot, idx)
		return
	}
	m.unlink(idx)
	m.pushFront(tagHot, idx)
	if m.hot.size > m.hotCap {
		if victim, ok := m.popBack(tagHot); ok {
			m.pushFront(tagCold, victim)
			m.demoteOverflow()
		}
	}
}

// remove drops a frame from whichever list currently holds it (used when
// a frame is reused for a different page after eviction).
func (m *lruManager) remove(frame int) {
	idx, ok := m.frameToNode[frame]
	if !ok {
		return
	}
	m.unlink(idx)
}

// evict pops a victim frame index: free first, then cold, then hot.
func (m *lruManager) evict() (int, bool) {
	if idx, ok := m.popBack(tagFree); ok {
		return m.nodes[idx].frame, true
	}
	if idx, ok := m.popBack(tagCold); ok {
		return m.nodes[idx].frame, true
	}
	if idx, ok := m.popBack(tagHot); ok {
		return m.nodes[idx].frame, true
	}
	return 0, false
}
