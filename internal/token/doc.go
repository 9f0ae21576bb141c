// Package token defines the lexical tokens of mirror query files.
// Invariants:
//   - Token.Text is the source spelling; identifiers are NFC-normalized.
//   - Token.Span covers the spelling exactly.
//   - Comments and whitespace never reach the token stream.
//   - Specifier keywords (class, virtual, const, ...) and builtin type
//     words are identifiers; reflexpr operands give them meaning.
package token
