//go:build !windows

package session

type unsupportedPlatform struct{}

// NewPlatform returns a Platform whose session query always fails with
// ErrUnsupported.
func NewPlatform() Platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) ProcessSessionID() (uint32, error) {
	return 0, ErrUnsupported
}

func (unsupportedPlatform) ActiveConsoleSessionID() uint32 {
	return 0
}

func (unsupportedPlatform) CreateMutex(string) (Mutex, bool, error) {
	return nil, false, ErrUnsupported
}
