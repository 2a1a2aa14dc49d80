package erasure

import "errors"

var (
	ErrRequestNotFound     = errors.New("deletion request not found")
	ErrCertificateNotReady = errors.New("erasure certificate not available")
	ErrBadDownloadToken    = errors.New("invalid certificate download token")
)
