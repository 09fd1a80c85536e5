// Package internal holds the packages behind the templex CLI.
//
//   - trim, scan: whitespace splitting, the source cursor and parser combinators
//   - lexer: template tokenizer and pipe splitting
//   - serializer, events: HTML serialization from structural events
//   - source, errors, logging, config: shared plumbing
//   - watcher, preview: change detection and the live preview server
//   - version: build information
package internal
