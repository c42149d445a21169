// Package export writes frames and stack elements as JSON for external
// front-ends and offline inspection.
//
// # Frame Format
//
// A frame is the pool state after one renderer update:
//
//	{
//	  "renderer": "3f0c...",
//	  "frame": 12,
//	  "time": 0.4,
//	  "seed": 1,
//	  "count": 2,
//	  "instances": [
//	    {"index": 0, "mesh": "cube", "material": "glass", "layer": 0,
//	     "position": [0, 0.1, 0], "rotation": [0, 0, 0, 1], "scale": [3, 0.2, 3]}
//	  ]
//	}
//
// Rotation is a quaternion in (x, y, z, w) order. Scale can be zero or
// negative for instances outside their fade window; consumers should skip
// them.
//
// # Elements Format
//
// A stack build exports its element boxes in draw order, in the builder's
// Z-up frame:
//
//	{
//	  "seed": 1,
//	  "count": 1,
//	  "bounds": {"min": [-1.5, -1.5, 0], "max": [1.5, 1.5, 0.3]},
//	  "elements": [{"position": [0, 0, 0.15], "size": [3, 3, 0.3]}]
//	}
//
// Use [WriteFrame] and [WriteElements] for any io.Writer, or [ExportFrame]
// and [ExportElements] for files. [ReadFrame] and [ReadElements] decode both
// formats back.
package export
