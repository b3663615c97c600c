package visitors

import "strconv"

// Tracker maintains the current virtual ID during a walk. A VID is the
// concatenation, from the document root down, of each tag's letter followed
// by its 1-based sibling ordinal when the tag may repeat (`DR1T1F2` is the
// second FIELD of the first TABLE of the first RESOURCE).
type Tracker struct {
	vid    []byte
	counts []map[byte]int
}

func NewTracker() *Tracker {
	return &Tracker{vid: make([]byte, 0, 16)}
}

// VID returns the virtual ID of the container currently entered.
func (t *Tracker) VID() string { return string(t.vid) }

// Enter descends into a container tag, extending the VID and opening a
// fresh sibling-count scope, and returns the container's VID.
func (t *Tracker) Enter(tag Tag) string {
	t.append(tag)
	t.counts = append(t.counts, make(map[byte]int))
	return t.VID()
}

// Leave pops the innermost container from the VID.
func (t *Tracker) Leave() {
	i := len(t.vid)
	for i > 0 && t.vid[i-1] >= '0' && t.vid[i-1] <= '9' {
		i--
	}
	if i > 0 {
		i--
	}
	t.vid = t.vid[:i]
	t.counts = t.counts[:len(t.counts)-1]
}

// Leaf returns the VID of a childless child of the current container,
// counting it among its siblings.
func (t *Tracker) Leaf(tag Tag) string {
	save := len(t.vid)
	t.append(tag)
	vid := t.VID()
	t.vid = t.vid[:save]
	return vid
}

func (t *Tracker) append(tag Tag) {
	t.vid = append(t.vid, tag.Char())
	if tag.Repeatable() {
		n := t.bump(tag)
		t.vid = strconv.AppendInt(t.vid, int64(n), 10)
	}
}

// bump increments and returns the sibling count of tag within the current
// container.
func (t *Tracker) bump(tag Tag) int {
	m := t.counts[len(t.counts)-1]
	m[tag.Char()]++
	return m[tag.Char()]
}

// ordinal extracts the trailing sibling ordinal of a VID, or -1 if the VID
// ends on a singleton tag letter.
func ordinal(vid string) int {
	i := len(vid)
	for i > 0 && vid[i-1] >= '0' && vid[i-1] <= '9' {
		i--
	}
	if i == len(vid) {
		return -1
	}
	n, _ := strconv.Atoi(vid[i:])
	return n
}
