// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides envwatch's standard CBOR encoding configuration.
//
// envwatch uses two serialization formats with a clear boundary:
//
//   - JSON for output read by people and scripts: CLI --format json.
//   - CBOR for output read by programs: CLI --format cbor (consumed by
//     the watcher daemon) and the on-disk build log archive.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types that appear in both JSON and CBOR output carry only `json` tags;
// fxamacker/cbor reads them as a fallback when `cbor` tags are absent.
// Purely internal types carry `cbor` tags.
package codec
