package api

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

// CommitRequest carries the hex encoded compressed points of a commitment.
type CommitRequest struct {
	PointG  string `json:"point_g"`
	PointH  string `json:"point_h"`
	Payload string `json:"payload"`
}

func (req *CommitRequest) decode() (g, h, payload []byte, err error) {
	if g, err = decodeHex("point_g", req.PointG); err != nil {
		return
	}
	if h, err = decodeHex("point_h", req.PointH); err != nil {
		return
	}
	payload, err = decodeHex("payload", req.Payload)
	return
}

type RevealRequest struct {
	Message string `json:"message"`
	Secret  string `json:"secret"`
}

type RevealResponse struct {
	RevealedAt uint64 `json:"revealed_at"`
}

type CommitmentResponse struct {
	Identity    string  `json:"identity"`
	State       string  `json:"state"`
	PointG      string  `json:"point_g"`
	PointH      string  `json:"point_h"`
	Payload     string  `json:"payload"`
	CommittedAt uint64  `json:"committed_at"`
	RevealedAt  *uint64 `json:"revealed_at"`
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.WithMessage(ErrBadRequest, fmt.Sprintf("%s: %v", field, err))
	}
	return b, nil
}
