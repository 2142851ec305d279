package feed

type Reel struct {
	Id       string `json:"id"`
	MediaUrl string `json:"media_url"`
	MediaId  string `json:"media_id"`
	Name     string `json:"name,omitempty"`
	Visible  bool   `json:"visible"`
	Position int    `json:"position"`
}

// visibleOf projects a snapshot to the subsequence shown in the feed,
// preserving relative order.
func visibleOf(reels []Reel) []Reel {
	visible := make([]Reel, 0, len(reels))
	for _, r := range reels {
		if r.Visible {
			visible = append(visible, r)
		}
	}

	return visible
}
