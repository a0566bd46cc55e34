// Package catalog loads the static survey definitions.
//
// The built-in catalog is embedded from surveys.yaml. A different file can be
// supplied at startup; either way every survey is validated before use:
//   - codes are unique and usable in a cookie name
//   - every survey has a title and at least one question
//   - every question has a prompt and distinct choice values
//
// Questions that declare no choices are answered Yes or No.
package catalog
