package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients pin
// against it.
const envelopeVersion = 1

// Envelope is the consistent JSON shape every successful response uses.
type Envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// EnvelopeTransformer wraps response bodies in the standard envelope. Error
// bodies pass through untouched; APIError carries its own shape.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, isErr := v.(*APIError); isErr {
		return v, nil
	}
	success := len(status) > 0 && (status[0] == '2' || status[0] == '3')
	return Envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
