// Package io provides JSON import and export for built move graphs.
//
// # JSON Format
//
// A graph document has two arrays:
//
//	{
//	  "nodes": [
//	    {
//	      "id": 0,
//	      "description": "completed imanari roll",
//	      "explicit": true,
//	      "code": "vwrjHJsAvKEJx3lT...",
//	      "coordinates": [[-0.41, 0.12, 0.03], ...]
//	    }
//	  ],
//	  "edges": [
//	    {"from": 0, "to": 2, "description": "to honey"}
//	  ]
//	}
//
// Node coordinates are listed in player-joint order (player 0's joints,
// then player 1's) and are authoritative. The code field is informational:
// it is omitted when a representative cannot be encoded, which happens for
// canonical forms whose joints fall outside the encodable box.
//
// # Import
//
// [ReadJSON] and [ImportJSON] rebuild a [movegraph.Graph] with
// [movegraph.Restore], so the result can keep resolving candidates:
//
//	g, err := io.ImportJSON("graph.json", movegraph.Options{})
//
// # Export
//
// [WriteJSON] and [ExportJSON] write indented JSON. [FromGraph] returns the
// [Document] itself, which also carries bson tags so the graph store can
// persist it unchanged.
package io
