// Package armerrors collects the typed error vocabulary shared by every ARM
// package. All failures from the resource/compliance/action/transaction
// pipeline surface as a *Error carrying one of the Kind values below, so
// callers at the outer Action.Verify / Transaction.Verify boundary can branch
// on Kind without caring which package raised it.
package armerrors

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an ARM failure.
type Kind string

// Error kinds, matching the abstract names used throughout the ARM
// specification. Every core operation that can fail returns one of these.
const (
	KindInvalidNullifierKey          Kind = "invalid_nullifier_key"
	KindInvalidResourceNonce         Kind = "invalid_resource_nonce"
	KindInvalidResourceKind          Kind = "invalid_resource_kind"
	KindInvalidRcv                   Kind = "invalid_rcv"
	KindInvalidDelta                 Kind = "invalid_delta"
	KindTagNotFound                  Kind = "tag_not_found"
	KindVerifyingKeyMismatch         Kind = "verifying_key_mismatch"
	KindProveFailed                  Kind = "prove_failed"
	KindProofVerificationFailed      Kind = "proof_verification_failed"
	KindDeltaProofGenerationFailed   Kind = "delta_proof_generation_failed"
	KindDeltaProofVerificationFailed Kind = "delta_proof_verification_failed"
	KindInvalidDeltaProof            Kind = "invalid_delta_proof"
	KindInvalidSignature             Kind = "invalid_signature"
	KindInvalidSigningKey             Kind = "invalid_signing_key"
	KindInvalidPublicKey             Kind = "invalid_public_key"
	KindNullifierDuplication         Kind = "nullifier_duplication"
	KindInstanceSerializationFailed  Kind = "instance_serialization_failed"
	KindBuildProverEnvFailed         Kind = "build_prover_env_failed"
	KindWriteWitnessFailed           Kind = "write_witness_failed"
	KindMissingField                 Kind = "missing_field"
	KindInvalidMerklePath            Kind = "invalid_merkle_path"
	KindInvalidComplianceInstance    Kind = "invalid_compliance_instance"
	KindInvalidMcv                   Kind = "invalid_mcv"
	KindInvalidLogicProof            Kind = "invalid_logic_proof"
	KindLogicRefMismatch             Kind = "logic_ref_mismatch"
)

// Error is the concrete error type returned by every ARM package.
type Error struct {
	Kind  Kind
	Field string // populated for KindMissingField
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, armerrors.New(KindTagNotFound, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an *Error of the given kind with a plain message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an *Error of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// MissingField constructs a KindMissingField error naming the absent field.
func MissingField(name string) *Error {
	return &Error{Kind: KindMissingField, Field: name}
}

// Is reports whether err carries the given Kind, anywhere in its chain.
func Is(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
