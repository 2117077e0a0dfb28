package catalogs

import "fmt"

const (
	ErrUnknownBlock    = "E_UNKNOWN_BLOCK"
	ErrUnknownProperty = "E_UNKNOWN_PROPERTY"
	ErrInvalidProperty = "E_INVALID_PROPERTY"
	ErrMissingProperty = "E_MISSING_PROPERTY"
)

// ValidationError reports a block id or property set rejected by the catalog.
type ValidationError struct {
	Code     string
	BlockID  string
	Property string
	Msg      string
}

func (e *ValidationError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s: %s[%s]: %s", e.Code, e.BlockID, e.Property, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.BlockID, e.Msg)
}
