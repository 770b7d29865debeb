// Package monitor implements the interactive panel dashboard.
//
// The dashboard draws a layout of panels, refreshes every panel's data on a
// timer and reacts to keys and mouse clicks in between.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: owns DashboardState and the loop phase
//   - Update: handles exactly one tick, refresh result, key or mouse event
//   - View: renders the current state to a string via Render
//
// # Key Components
//
//	Model           - the Bubble Tea model and refresh/input loop
//	DashboardState  - layout, per-panel state, padding and height override
//	Refresher       - fetches every visible panel concurrently per cycle
//	Render/Geometry - pure frame rendering and window placement
//
// # Message Flow
//
//  1. tickMsg fires (immediately on start, then every refresh interval)
//  2. startRefresh moves to Refreshing and fetches all visible panels
//  3. refreshMsg arrives with the whole cycle; results are applied together
//  4. the phase becomes Rendered, the next tick is scheduled and the loop is Idle again
//
// A new cycle never starts while one is in flight, so the latest completed
// cycle is always what is on screen. Quitting cancels in-flight fetches.
//
// # Keyboard Shortcuts
//
//	1-9, a-z    - Expand / collapse the n-th panel (p, q and r skipped)
//	r           - Refresh now
//	p           - Toggle padding
//	+ / - / 0   - Raise / lower / reset the panel height override
//	?           - Toggle help overlay
//	q, Esc      - Quit
package monitor
