package reel

// Reel is the stored record of one uploaded video. Position lives in the
// order zset, not in the hash.
type Reel struct {
	MediaUrl string `redis:"media_url"`
	MediaId  string `redis:"media_id"`
	Name     string `redis:"name"`
	Visible  bool   `redis:"visible"`
}

// Entry is one row of the total order: a reel id with its position.
type Entry struct {
	ReelId   string
	Position int
}
