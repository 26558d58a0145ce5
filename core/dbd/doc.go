// Package dbd parses, resolves, and re-serializes .dbd table schema
// definition files.
//
// A .dbd file describes the shape of one logical database table across many
// client builds. It opens with a COLUMNS section declaring every column the
// table has ever had, followed by one definition block per build range listing
// the columns that build actually uses:
//
//	COLUMNS
//	int ID
//	int<Map::ID> ParentMapID
//	string Directory // reference to World\Map\
//	locstring MapName_lang
//	int Unverified?
//
//	LAYOUT B54FF6E1
//	BUILD 0.6.0.3592
//	BUILD 0.5.3.3368-0.5.3.3494
//	$id$ID<32>
//	ParentMapID<u16>
//	Directory
//	MapName_lang
//
// The package works in two tiers. Parse produces the raw tier: columns and
// entries exactly as declared, before any cross-checking. Resolve merges each
// entry with its column declaration into a concrete Type, rejecting
// contradictions such as an integer column without a width or a foreign key
// on a float. Both tiers serialize back to canonical text with Emit, and both
// support build lookup with SpecificVersion.
//
// Parse failures are *ParseError values carrying the line and byte column of
// the offending token; Locate recovers the source text at that position.
// Resolve failures are *ResolveError values and carry no position, since
// resolution validates structure rather than text.
package dbd
