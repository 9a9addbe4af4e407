// Package editor drives the modal form used to create and edit the rows of
// a sub-resource table, together with the lookup lists the form selects
// from.
//
// Cascade holds a child list that depends on a parent selection, such as the
// provinces of a country. Options holds a flat list loaded once, such as the
// countries. Editor is the modal itself: Closed, or Open in Create or Edit
// mode with the current form values.
package editor
