// Package handlers provides HTTP request handlers for the library API.
//
// It includes handlers for:
//   - Browsing stored libraries, tracks and playlists
//   - Track search across libraries
//   - Decoding an uploaded library document without storing it
//   - Triggering a sync and reading store statistics
//   - Health checks and version information
package handlers
