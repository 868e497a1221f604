// Package core provides the business logic for CSV-to-text conversion.
//
// The package turns spreadsheet exports of vocabulary lists into canonical
// word-pair lines of the form
//
//	sourceWord:sourceHint|targetWord:targetHint
//
// It has no transport dependencies and is used by the HTTP server, the
// command-line tool and tests alike.
//
// # Pipeline
//
// Raw text is split into rows on "\n" and run through:
//
//  1. [DetectDelimiter] picks comma or semicolon for the whole input
//  2. [StripHeaderRow] drops a first row made only of delimiters
//  3. [StripHeaderColumn] drops a leading empty column shared by every row
//  4. [Normalize] reshapes each row and collects malformed rows
//
// Files go through [ConvertFile] first, which decodes the bytes to UTF-8
// ([DecodeBytes]) or flattens an .xlsx sheet ([SheetText]).
//
// # Batches
//
// [Service.ConvertFiles] converts several files concurrently and returns a
// [Batch] whose lines keep the order the files were submitted in. A file that
// cannot be read is reported in its [FileResult]; the rest of the batch still
// converts. When configured, batches are recorded to a [History] and converted
// files are cached in a [ResultCache].
//
// # Free-typed text
//
// Text typed directly into the field uses the older "word,hint:word,hint"
// shape. [ValidateText] checks it line by line.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE007: File errors (size, encoding, format, empty, mixed separators)
//   - CONV001-CONV002: Conversion request errors
//   - UPL001-UPL003: Capacity and cancellation
//   - HIST001-HIST002: History lookups
//   - DB001-DB003: Database errors
//   - RATE001: Rate limiting
package core
