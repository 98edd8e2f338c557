package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/aukilabs/surfacegrid/featureflag"
	"github.com/aukilabs/surfacegrid/models"
	"github.com/aukilabs/surfacegrid/modules/surfacegrid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
	"google.golang.org/protobuf/encoding/protodelim"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeProtobuf = "application/x-protobuf"

	// Header carrying the number of samples before decimation in protobuf
	// responses.
	headerGeneratedCount = "X-Generated-Count"
)

// GridHandler serves surface grid computations.
type GridHandler struct {
	Defaults     GridDefaults
	FeatureFlags featureflag.FeatureFlag
}

// Compute runs a surface grid request.
func (h GridHandler) Compute(req gridRequest) (surfacegrid.Grid, error) {
	surfaces, err := req.surfaces()
	if err != nil {
		return surfacegrid.Grid{}, err
	}
	return surfacegrid.ComputeSurfaceGrid(surfaces, req.options(h.Defaults, h.FeatureFlags))
}

// ServeHTTP answers POST requests with the sampled poses, as JSON or, when
// the client accepts application/x-protobuf, as length-delimited
// hagallpb.Pose messages.
func (h GridHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		httpcmn.InternalServerError(w, errors.New("reading body failed").Wrap(err))
		return
	}

	var req gridRequest
	if err := json.Unmarshal(b, &req); err != nil {
		httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
		return
	}

	grid, err := h.Compute(req)
	if err != nil {
		writeError(w, err)
		return
	}

	logs.WithTag("walls", len(req.Walls)).
		WithTag("generated", grid.Generated).
		WithTag("returned", len(grid.Samples)).
		WithTag("skipped", len(grid.Skipped)).
		Debug("surface grid computed")

	if strings.Contains(r.Header.Get("Accept"), contentTypeProtobuf) {
		writeProtobufPoses(w, grid)
		return
	}
	writeJSON(w, http.StatusOK, newGridResponse(grid))
}

// HandleWebSocket answers every JSON request frame with a JSON response
// frame until the client disconnects.
func (h GridHandler) HandleWebSocket(conn *websocket.Conn) {
	for {
		var req gridRequest
		if err := websocket.JSON.Receive(conn, &req); err != nil {
			if err != io.EOF {
				logs.Warn(errors.New("receiving surface grid request failed").Wrap(err))
			}
			return
		}

		var res any
		grid, err := h.Compute(req)
		if err != nil {
			res = errorResponse{Type: errors.Type(err), Error: err.Error()}
		} else {
			res = newGridResponse(grid)
		}

		if err := websocket.JSON.Send(conn, res); err != nil {
			logs.Warn(errors.New("sending surface grid response failed").Wrap(err))
			return
		}
	}
}

func writeProtobufPoses(w http.ResponseWriter, grid surfacegrid.Grid) {
	w.Header().Set("Content-Type", contentTypeProtobuf)
	w.Header().Set(headerGeneratedCount, strconv.Itoa(grid.Generated))
	w.WriteHeader(http.StatusOK)

	for _, p := range grid.Samples.ToProtobuf() {
		if _, err := protodelim.MarshalTo(w, p); err != nil {
			logs.Warn(errors.New("writing pose failed").Wrap(err))
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httpcmn.InternalServerError(w, errors.New("encoding response failed").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	w.Write(b)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch errors.Type(err) {
	case surfacegrid.ErrTypeInvalidInput,
		surfacegrid.ErrTypeDegenerateBasis,
		models.ErrTypeMissingClass,
		models.ErrTypeInvalidCollisionPolicy:
		status = http.StatusBadRequest

	case models.ErrTypePartitionNotFound,
		models.ErrTypeActorNotFound:
		status = http.StatusNotFound

	default:
		logs.Error(err)
	}

	writeJSON(w, status, errorResponse{
		Type:  errors.Type(err),
		Error: err.Error(),
	})
}
