// Package domain contains the survey model shared by every layer.
//
// Surveys are static definitions loaded from the catalog. A Session holds the
// only mutable state: the survey picked by the user and the append-only list
// of answers given so far.
package domain
