package service

import (
	"fmt"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// WrapperManagerService implements WrapperManager over a prefix-keyed registry.
type WrapperManagerService struct {
	wrappers      map[string]KeyWrapper
	defaultPrefix string
}

// NewWrapperManager creates a manager with the "$1$" wrapper registered as default.
func NewWrapperManager(wrapper KeyWrapper) *WrapperManagerService {
	return &WrapperManagerService{
		wrappers:      map[string]KeyWrapper{keywrapDomain.Prefix: wrapper},
		defaultPrefix: keywrapDomain.Prefix,
	}
}

// Default returns the wrapper used when callers do not supply a descriptor.
// Returns ErrCipherUnavailable if that wrapper is not enabled.
func (m *WrapperManagerService) Default() (KeyWrapper, error) {
	return m.lookup(m.defaultPrefix)
}

// ForWrappingKey returns the wrapper for the descriptor's version prefix.
// Returns ErrUnsupportedFormat for unknown prefixes and ErrCipherUnavailable if the
// matching wrapper is not enabled.
func (m *WrapperManagerService) ForWrappingKey(wrappingKey string) (KeyWrapper, error) {
	prefix, ok := keywrapDomain.FormatPrefix(wrappingKey)
	if !ok {
		return nil, fmt.Errorf("%w: descriptor has no version prefix", keywrapDomain.ErrInvalidKeyFormat)
	}
	return m.lookup(prefix)
}

func (m *WrapperManagerService) lookup(prefix string) (KeyWrapper, error) {
	wrapper, ok := m.wrappers[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %q", keywrapDomain.ErrUnsupportedFormat, prefix)
	}
	if !wrapper.Enabled() {
		return nil, keywrapDomain.ErrCipherUnavailable
	}
	return wrapper, nil
}
