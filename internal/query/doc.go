// Package query implements the declarative filter engine used by the store's
// document-query facility.
//
// A filter is a plain JSON object in a MongoDB-like dialect:
//
//	{"teams": {"$gt": 30}}                          // implicit $and
//	{"$and": [{"teams": {"$gt": 30}}, {"teams": {"$lt": 32}}]}
//	{"$or": [{"name": {"$like": "blog"}}, {"archived": true}]}
//
// Evaluation happens in three stages:
//
//  1. Normalize flattens the filter into one (field, operator, comparand,
//     logical-group) condition per operator, merging nested $and/$or/$nor
//     blocks recursively. Plain top-level fields are implicit $and members;
//     a field value that is not an operator object means {$eq: value}.
//  2. Matches evaluates every condition against one row, extracting field
//     values through keypath so nested field paths work, and combines the
//     per-group results: (and satisfied OR or satisfied) AND NOT nor hit.
//  3. Filter runs Matches over a collection in deterministic key order with
//     skip/take bounds. It is a linear scan, not an indexed query.
//
// Operators form a closed enumeration (Op); an unrecognized operator string
// maps to OpUnknown, which evaluates to false for every input.
package query
