package querytree

import (
	"fmt"

	"github.com/roach88/advsearch/internal/ir"
)

// ToValue converts g into a generic ir.Value in wire shape.
func ToValue(g Group) (ir.Value, error) {
	data, err := Marshal(g)
	if err != nil {
		return nil, err
	}
	return ir.UnmarshalValue(data)
}

// Fingerprint returns the content hash of g. Trees that serialise to the
// same wire payload up to key order, Unicode normalisation and number
// spelling share a fingerprint.
func Fingerprint(g Group) (string, error) {
	v, err := ToValue(g)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return ir.Hash(ir.DomainPayload, v)
}

// ClauseFingerprint hashes a single clause, used to spot duplicate clauses
// within a group.
func ClauseFingerprint(c Clause) (string, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("clause fingerprint: %w", err)
	}
	v, err := ir.UnmarshalValue(data)
	if err != nil {
		return "", fmt.Errorf("clause fingerprint: %w", err)
	}
	return ir.Hash(ir.DomainClause, v)
}
