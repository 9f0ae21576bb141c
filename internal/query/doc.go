// Package query implements the *.mq query language: statements
// evaluated in order against one translation unit.
//
//	let NAME = EXPR ;
//	print EXPR (, EXPR)* ;
//	assert EXPR ;
//
// Parse builds the statement list, Resolver maps reflexpr operands onto
// the declaration model and Interp evaluates statements through
// metaeval. Every failure is reported as a diagnostic whose span points
// into the query file.
package query
