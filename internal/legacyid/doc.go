// Package legacyid provides opaque string types for the two identifier
// forms ssbdb indexes by: a feed id (an author's public key, legacy
// string form) and a message key (a message's content hash, legacy string
// form).
//
// This package deliberately does not validate or compute digests — that is
// the job of a real multikey/multihash canonicalization library, which
// ssbdb treats as an external collaborator it does not implement. The
// light shape checks here exist only to catch an obviously-wrong string at
// the API boundary, not to establish cryptographic validity.
package legacyid
