// Package panel computes the flat cut-sheet geometry for a rectangular box.
//
// [New] takes the outer box dimensions and driver diameter in centimeters
// and returns a [Layout] in millimeters with three panel groups:
//
//   - Front panel (width x height) at the origin, with a circular driver
//     cutout centered horizontally at 38.2% of the height.
//   - Side panel (depth x height), drawn once above the front panel and cut
//     twice.
//   - Top/bottom panel, drawn once to the right of the front panel and cut
//     twice. The piece is depth wide along x and spans width along y.
//
// Groups are separated by a 50 mm gutter ([Gutter]). The layout is a pure
// function of its inputs; serializing it is the job of the sink package.
package panel
