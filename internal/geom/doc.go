// Package geom provides the 2D vector algebra used by the path relaxation.
//
// [Vec2] doubles as a point and a free vector. All operations are value
// based and allocation free.
package geom
