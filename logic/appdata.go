// Package logic implements resource-logic proofs: the per-resource
// predicate a compliance unit's consumed/created resources must satisfy,
// plus the app_data structure resources attach auxiliary, expirable blobs
// to (spec.md §3; supplemented from arm/src/logic_proof.rs and the
// arm_types/arm_core crates in original_source/, which the distillation
// summarized but did not fully specify).
package logic

import (
	"crypto/sha256"

	"github.com/anoma/arm-go/resource"
)

// Audience names who an ExpirableBlob's payload is intended for. A single
// resource can carry blobs for more than one audience at once.
type Audience uint8

const (
	// AudienceResource is data the resource's own logic needs to re-derive
	// its behavior (e.g. parameters the circuit consumed as witness).
	AudienceResource Audience = iota
	// AudienceDiscovery is data indexers and wallets use to notice and
	// decrypt a resource without interacting with its logic.
	AudienceDiscovery
	// AudienceExternal is data meant for an off-chain counterparty (e.g. a
	// delivery address for a swap).
	AudienceExternal
	// AudienceApplication is data meant for an application built on top of
	// this resource but uninvolved in its own consumption rules.
	AudienceApplication
)

// DeletionCriterion governs when a blob may be pruned from storage without
// affecting correctness.
type DeletionCriterion uint8

const (
	// DeletionNever means the blob must be retained indefinitely.
	DeletionNever DeletionCriterion = iota
	// DeletionOnConsume means the blob may be discarded once its
	// resource's nullifier has been published (the resource can no longer
	// be queried for).
	DeletionOnConsume
)

// ExpirableBlob is one opaque, audience-tagged, deletable payload attached
// to a resource's AppData.
type ExpirableBlob struct {
	Audience Audience
	Data     []byte
	Deletion DeletionCriterion
}

// AppData is the full set of expirable blobs a resource carries.
type AppData struct {
	Blobs []ExpirableBlob
}

// ForAudience returns every blob tagged for the given audience, in order.
func (a AppData) ForAudience(aud Audience) []ExpirableBlob {
	var out []ExpirableBlob
	for _, b := range a.Blobs {
		if b.Audience == aud {
			out = append(out, b)
		}
	}
	return out
}

// Prune drops every blob whose DeletionCriterion is DeletionOnConsume,
// returning the remainder. Callers invoke this once a resource's
// nullifier has been published.
func (a AppData) Prune() AppData {
	var kept []ExpirableBlob
	for _, b := range a.Blobs {
		if b.Deletion != DeletionOnConsume {
			kept = append(kept, b)
		}
	}
	return AppData{Blobs: kept}
}

// appDataDST separates AppData's content digest from every other SHA-256
// use in this module.
const appDataDST = "ARM_APP_DATA_DIGEST"

// Digest commits to every blob's audience, deletion criterion, and data in
// order, so a resource logic can bind its proof to a specific AppData
// without the zkVM oracle ever seeing the raw blobs.
func (a AppData) Digest() resource.Digest {
	h := sha256.New()
	h.Write([]byte(appDataDST))
	for _, b := range a.Blobs {
		h.Write([]byte{byte(b.Audience), byte(b.Deletion)})
		h.Write(b.Data)
	}
	var d resource.Digest
	copy(d[:], h.Sum(nil))
	return d
}
