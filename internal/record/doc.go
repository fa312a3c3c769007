// Package record defines the item version record carried on the stream, its
// minimal status projection, and the decode rules between stored bytes and
// both shapes.
//
// Wire form is a JSON object:
//
//	{"tcin":"123","version":1,"source_system":"s","source_timestamp":"t",
//	 "created_timestamp":"t","status":"UNPUBLISHED"}
//
// A projection keeps tcin, version and status only and decodes from either
// the full record or its own encoding.
package record
