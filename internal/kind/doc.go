// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package kind implements the semantic type system used to wire workflow
// steps together.
//
// A Kind is a named tag such as "image" or "object_detection_prediction".
// Block parameters accept a set of kinds and block outputs produce a set of
// kinds; a connection is legal when the two sets intersect. The wildcard kind
// "*" intersects with everything.
//
// Kinds live in a Registry. The process-wide registry returned by Default is
// append-only and pre-populated with the builtin kinds. Requests that declare
// their own kinds (dynamic blocks) work on a Child registry so the ephemeral
// kinds never leak into other requests.
package kind
