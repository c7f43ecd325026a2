// Package watcher re-runs composition when manifest files change.
//
// Editors rarely write a file in place: many write a temporary file and
// rename it over the original. The watcher therefore watches the parent
// directory of every manifest and filters events by path, so that a
// replaced file keeps being observed.
//
// Bursts of events (a save usually produces several) are coalesced by a
// Debouncer and delivered as one sorted batch of changed manifest paths.
package watcher
