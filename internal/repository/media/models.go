package media

type UploadParams struct {
	File     []byte
	Filename string
	MimeType string
}

// UploadedMedia is the media host's handle on a stored video: a playable
// URL plus the host-side id needed to reference the asset later.
type UploadedMedia struct {
	Url     string
	MediaId string
}
