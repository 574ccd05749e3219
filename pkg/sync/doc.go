// Package sync implements the claudesync synchronization engine.
//
// An Engine copies every manifest item from a source root to a destination
// root. Capture copies live -> mirror (backup), Apply copies mirror -> live
// (restore). Directory items replace the destination subtree wholesale;
// file items overwrite. Each item is processed independently and its
// outcome is recorded in a Report: one item failing never stops the run.
//
// The only error Run itself returns is a failed precondition (an unknown
// direction, a live root that is missing on capture or cannot be created
// on apply). In that case nothing has been touched.
package sync
