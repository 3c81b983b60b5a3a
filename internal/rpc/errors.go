package rpc

import (
	"net/http"

	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// statusFor maps a vnerr.Kind to the HTTP status the RPC surface returns,
// per spec §7's error taxonomy.
func statusFor(err error) int {
	kind, ok := vnerr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case vnerr.NotFound:
		return http.StatusNotFound
	case vnerr.WrongKind:
		return http.StatusBadRequest
	case vnerr.NotConnected:
		return http.StatusConflict
	case vnerr.AlreadyPresent:
		return http.StatusConflict
	case vnerr.Unimplemented:
		return http.StatusNotImplemented
	case vnerr.NetworkingError:
		return http.StatusServiceUnavailable
	case vnerr.EncodingError:
		return http.StatusInternalServerError
	case vnerr.HardFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}
