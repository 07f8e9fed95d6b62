// Package action implements spec.md §4's Action: one compliance unit
// together with the resource-logic proof for every resource it consumes
// or creates, bound together by the action's own fixed-depth tag tree.
package action

import (
	"bytes"
	"context"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/compliance"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/logic"
	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
)

// ResourceLogic pairs one resource's tag (nullifier if consumed,
// commitment if created) with the app_data it carries and the proof that
// its logic accepts this consumption or creation.
type ResourceLogic struct {
	Tag        resource.Digest
	IsConsumed bool
	AppData    logic.AppData
	Proof      logic.Proof
}

// Action is one compliance unit plus the resource-logic proof for every
// tag that unit's instance binds. Sigmabus is set when the compliance
// unit is the sigmabus shape, carrying the extra sigma-protocol fields
// (compliance.Instance alone cannot express them) so an aggregation can
// batch-verify every sigmabus unit's Pedersen opening across a whole
// transaction or aggregation step.
type Action struct {
	Compliance      compliance.Instance
	ComplianceProof compliance.Proof
	Logics          []ResourceLogic
	Sigmabus        *compliance.SigmabusInstance
}

// Tags returns every tag this action binds: its compliance instance's
// consumed nullifiers followed by its created commitments, in the order
// the instance lists them. This is the leaf set ConstructActionTree pads
// and sorts into the action's tag tree.
func (a Action) Tags() []resource.Digest {
	tags := make([]resource.Digest, 0, len(a.Compliance.ConsumedNullifiers)+len(a.Compliance.CreatedCommitments))
	tags = append(tags, a.Compliance.ConsumedNullifiers...)
	tags = append(tags, a.Compliance.CreatedCommitments...)
	return tags
}

// ConstructActionTree builds this action's fixed-depth tag tree.
func (a Action) ConstructActionTree() (*merklepath.ActionTree, error) {
	return merklepath.BuildActionTree(a.Tags())
}

// Delta returns this action's contribution to a transaction's value
// delta, read off its compliance instance.
func (a Action) Delta() curve.Point {
	return a.Compliance.Delta()
}

// tagSet builds a lookup set for Verify's consistency check.
func tagSet(tags []resource.Digest) map[resource.Digest]struct{} {
	m := make(map[resource.Digest]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return m
}

// logicRefByTag maps every tag this action's compliance instance binds to
// the LogicRef the resource at that tag passed through (spec.md §4.3
// point 5), for Verify's VerifyingKeyMismatch check.
func (a Action) logicRefByTag() map[resource.Digest]resource.Digest {
	m := make(map[resource.Digest]resource.Digest, len(a.Compliance.ConsumedNullifiers)+len(a.Compliance.CreatedCommitments))
	for i, nf := range a.Compliance.ConsumedNullifiers {
		if i < len(a.Compliance.ConsumedLogicRefs) {
			m[nf] = a.Compliance.ConsumedLogicRefs[i]
		}
	}
	for i, cm := range a.Compliance.CreatedCommitments {
		if i < len(a.Compliance.CreatedLogicRefs) {
			m[cm] = a.Compliance.CreatedLogicRefs[i]
		}
	}
	return m
}

// Verify checks that the action's compliance proof is valid, that its
// logic proofs cover exactly the tags the compliance instance binds (no
// more, no fewer, no duplicates), and that every logic proof verifies
// against the action's own tag-tree root.
func (a Action) Verify(ctx context.Context, complianceVerifier compliance.Verifier, logicVerifier logic.Verifier) error {
	if err := complianceVerifier.Verify(ctx, a.Compliance, a.ComplianceProof); err != nil {
		return err
	}

	expected := tagSet(a.Tags())
	if len(a.Logics) != len(expected) {
		return armerrors.New(armerrors.KindMissingField,
			"action: logic proof count does not match compliance instance's tag count")
	}

	consumedSet := tagSet(a.Compliance.ConsumedNullifiers)
	logicRefs := a.logicRefByTag()
	seen := make(map[resource.Digest]struct{}, len(a.Logics))
	for _, rl := range a.Logics {
		if _, ok := expected[rl.Tag]; !ok {
			return armerrors.New(armerrors.KindTagNotFound,
				"action: logic proof for a tag the compliance instance does not bind")
		}
		if _, dup := seen[rl.Tag]; dup {
			return armerrors.New(armerrors.KindTagNotFound, "action: duplicate logic proof tag")
		}
		seen[rl.Tag] = struct{}{}

		_, isConsumedTag := consumedSet[rl.Tag]
		if rl.IsConsumed != isConsumedTag {
			return armerrors.New(armerrors.KindTagNotFound,
				"action: logic proof's IsConsumed does not match the tag's role in the compliance instance")
		}

		logicRef := logicRefs[rl.Tag]
		if !bytes.Equal(rl.Proof.VerifyingKey, logicRef[:]) {
			return armerrors.New(armerrors.KindVerifyingKeyMismatch,
				"action: logic proof's verifying key does not match the resource's logic_ref")
		}
	}

	tree, err := a.ConstructActionTree()
	if err != nil {
		return err
	}
	root := tree.Root()

	for _, rl := range a.Logics {
		in := logic.VerifierInputs{
			Tag:            rl.Tag,
			IsConsumed:     rl.IsConsumed,
			ActionTreeRoot: root,
			AppData:        rl.AppData,
		}
		if err := logicVerifier.Verify(ctx, in, rl.Proof); err != nil {
			return err
		}
	}
	return nil
}
