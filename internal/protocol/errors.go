package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrBusy            = "E_BUSY"

	// Plan/generation layer.
	ErrBadRequest           = "E_BAD_REQUEST"
	ErrInvalidConfiguration = "E_INVALID_CONFIGURATION"
	ErrEmptyScene           = "E_EMPTY_SCENE"
	ErrLimit                = "E_LIMIT"
	ErrCanceled             = "E_CANCELED"
	ErrInternal             = "E_INTERNAL"

	// Block catalog validation, passed through from the catalog.
	ErrUnknownBlock    = "E_UNKNOWN_BLOCK"
	ErrUnknownProperty = "E_UNKNOWN_PROPERTY"
	ErrInvalidProperty = "E_INVALID_PROPERTY"
	ErrMissingProperty = "E_MISSING_PROPERTY"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:      {},
	ErrBusy:                 {},
	ErrBadRequest:           {},
	ErrInvalidConfiguration: {},
	ErrEmptyScene:           {},
	ErrLimit:                {},
	ErrCanceled:             {},
	ErrInternal:             {},
	ErrUnknownBlock:         {},
	ErrUnknownProperty:      {},
	ErrInvalidProperty:      {},
	ErrMissingProperty:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
