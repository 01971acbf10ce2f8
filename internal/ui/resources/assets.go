// Package resources serves the portal's stylesheet and other static files.
// Builds tagged dev read them from disk so edits show up without a rebuild;
// every other build embeds them.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Prefix is the URL path static assets are mounted under.
const Prefix = "/static/"
