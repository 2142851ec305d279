package media

import "errors"

var (
	ErrEmptyFile      = errors.New("no file was supplied")
	ErrUploadRejected = errors.New("media host rejected upload")
)
