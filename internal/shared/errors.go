package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Credential management errors
	ErrInvalidCredential       = fmt.Errorf("invalid API key")
	ErrDuplicateCredential     = fmt.Errorf("API key already exists")
	ErrNoCredentials           = fmt.Errorf("no API keys available")
	ErrNoCredentialsConfigured = fmt.Errorf("no API keys configured")

	// Gateway and service errors
	ErrFetchFailed    = fmt.Errorf("fetch failed")
	ErrQuotaExhausted = fmt.Errorf("quota exhausted")

	// Playback errors
	ErrPlayback      = fmt.Errorf("playback failed")
	ErrSourceStopped = fmt.Errorf("source stopped")

	// Library errors
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrPresetLocked     = fmt.Errorf("preset playlists cannot be modified")

	// Storage errors
	ErrStorageWrite = fmt.Errorf("storage write failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
