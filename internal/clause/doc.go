// Package clause builds the WHERE and GET fragments of host-tool query commands.
//
// Ownership boundary:
// - where/get option shapes and their validation
//
// - clause text generation
//
// - ordered JSON decoding of where specs and the inverse clause parser
package clause
