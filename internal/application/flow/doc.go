// Package flow implements the survey flow controller.
//
// The manager turns each request into an Outcome, either a page to render
// or a redirect, by comparing the number of stored answers with the number of
// questions:
//   - no started session redirects to the root page
//   - question N is served only when exactly N answers exist
//   - an accepted answer redirects to the next question or to completion
//   - a live completion cookie shows the already-done page instead of a retake
//
// Wrong-step requests never fail; they are redirected to the correct step,
// sometimes with a notice for the user.
package flow
