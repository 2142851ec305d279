package feed

import (
	"errors"
	"math"
)

var (
	ErrNoSuchItem    = errors.New("no such feed item")
	ErrReelNotActive = errors.New("reel is not the active item")
)

type ItemState int

const (
	StateIdle ItemState = iota
	StatePlaying
	StatePaused
)

// Player command actions, consumed by the feed client.
const (
	ActionPlay   = "play"
	ActionPause  = "pause"
	ActionReset  = "reset"
	ActionMute   = "mute"
	ActionUnmute = "unmute"
)

type PlayerCommand struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
}

type sessionItem struct {
	state ItemState
	muted bool
}

// Session is one viewer's playback state over the visible subsequence: at
// most one item is playing at any time, everything else is paused or idle.
// A Session is confined to a single connection and is not safe for
// concurrent use.
type Session struct {
	reels       []Reel
	items       []sessionItem
	activeIndex int
}

func NewSession(visibleReels []Reel) *Session {
	s := &Session{}
	s.reset(visibleReels)

	return s
}

func (s *Session) reset(visibleReels []Reel) {
	s.reels = visibleReels
	s.items = make([]sessionItem, len(visibleReels))
	for i := range s.items {
		// muted by default so a fresh activation can always autoplay
		s.items[i] = sessionItem{state: StateIdle, muted: true}
	}
	s.activeIndex = -1
}

func (s *Session) ActiveIndex() int {
	return s.activeIndex
}

func (s *Session) Len() int {
	return len(s.reels)
}

// OnScroll recomputes the active item from the scroll offset: the candidate
// index is the offset quantized to whole viewports, clamped into bounds.
// Repeated events with the same candidate are no-ops, so the handler stays
// O(1) per event and idempotent.
func (s *Session) OnScroll(scrollOffset, viewportHeight float64) []PlayerCommand {
	if len(s.reels) == 0 || viewportHeight <= 0 {
		return nil
	}

	candidate := int(math.Round(scrollOffset / viewportHeight))
	if candidate < 0 {
		candidate = 0
	}
	if candidate > len(s.reels)-1 {
		candidate = len(s.reels) - 1
	}

	if candidate == s.activeIndex {
		return nil
	}

	return s.activate(candidate)
}

// activate transitions the old active item to Paused with its playback
// reset, and the candidate to Playing. Scrolling away also discards any
// explicit unmute, so re-activation always starts muted.
func (s *Session) activate(candidate int) []PlayerCommand {
	var commands []PlayerCommand

	if s.activeIndex >= 0 {
		old := &s.items[s.activeIndex]
		old.state = StatePaused
		commands = append(commands,
			PlayerCommand{Index: s.activeIndex, Action: ActionPause},
			PlayerCommand{Index: s.activeIndex, Action: ActionReset},
		)
		if !old.muted {
			old.muted = true
			commands = append(commands, PlayerCommand{Index: s.activeIndex, Action: ActionMute})
		}
	}

	s.items[candidate].state = StatePlaying
	s.activeIndex = candidate
	commands = append(commands, PlayerCommand{Index: candidate, Action: ActionPlay})

	return commands
}

// TogglePlay flips the active item between Playing and Paused. Unlike a
// scroll-away pause, an explicit pause keeps the playback position.
func (s *Session) TogglePlay(index int) ([]PlayerCommand, error) {
	if index < 0 || index >= len(s.items) {
		return nil, ErrNoSuchItem
	}
	if index != s.activeIndex {
		return nil, ErrReelNotActive
	}

	item := &s.items[index]
	if item.state == StatePlaying {
		item.state = StatePaused
		return []PlayerCommand{{Index: index, Action: ActionPause}}, nil
	}

	item.state = StatePlaying
	return []PlayerCommand{{Index: index, Action: ActionPlay}}, nil
}

// ToggleMute flips the item's mute flag. Mute is independent of play state.
func (s *Session) ToggleMute(index int) ([]PlayerCommand, error) {
	if index < 0 || index >= len(s.items) {
		return nil, ErrNoSuchItem
	}

	item := &s.items[index]
	item.muted = !item.muted
	if item.muted {
		return []PlayerCommand{{Index: index, Action: ActionMute}}, nil
	}

	return []PlayerCommand{{Index: index, Action: ActionUnmute}}, nil
}

// Sync rebuilds the session against a fresh visible subsequence. The active
// index is re-derived from the current scroll offset rather than carried
// over, since the item at the old index may be gone or elsewhere.
func (s *Session) Sync(visibleReels []Reel, scrollOffset, viewportHeight float64) []PlayerCommand {
	s.reset(visibleReels)

	return s.OnScroll(scrollOffset, viewportHeight)
}

type ItemStatus struct {
	ReelId    string `json:"reel_id"`
	IsPlaying bool   `json:"is_playing"`
	IsMuted   bool   `json:"is_muted"`
}

type SessionState struct {
	ActiveIndex int          `json:"active_index"`
	Items       []ItemStatus `json:"items"`
}

func (s *Session) State() SessionState {
	items := make([]ItemStatus, len(s.items))
	for i, item := range s.items {
		items[i] = ItemStatus{
			ReelId:    s.reels[i].Id,
			IsPlaying: item.state == StatePlaying,
			IsMuted:   item.muted,
		}
	}

	return SessionState{
		ActiveIndex: s.activeIndex,
		Items:       items,
	}
}
