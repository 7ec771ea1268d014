package provider

import "strings"

// Selector maps model identifiers to backends. The zero value recognizes nothing.
type Selector struct {
	HostedPrefixes []string
	HostedEndpoint string
	HostedKey      string
	LocalModel     string
	LocalEndpoint  string
}

// Classify returns the backend for model without resolving connection details.
func (s Selector) Classify(model string) (Backend, error) {
	for _, prefix := range s.HostedPrefixes {
		if prefix != "" && strings.HasPrefix(model, prefix) {
			return Hosted, nil
		}
	}
	if s.LocalModel != "" && model == s.LocalModel {
		return Local, nil
	}
	return 0, &UnsupportedModelError{Model: model}
}

// Resolve returns the connection target for model. It performs no I/O.
func (s Selector) Resolve(model string) (BackendConfig, error) {
	backend, err := s.Classify(model)
	if err != nil {
		return BackendConfig{}, err
	}

	switch backend {
	case Hosted:
		return BackendConfig{Backend: Hosted, Endpoint: s.HostedEndpoint, Credential: s.HostedKey}, nil
	default:
		return BackendConfig{Backend: Local, Endpoint: s.LocalEndpoint}, nil
	}
}
