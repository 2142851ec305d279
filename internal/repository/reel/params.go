package reel

type SetReelParams struct {
	ReelId   string
	MediaUrl string
	MediaId  string
	Name     string
	Visible  bool
}

type UpdateReelPositionParams struct {
	ReelId   string
	Position int
}

type UpdateReelVisibleParams struct {
	ReelId  string
	Visible bool
}
