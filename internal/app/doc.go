// Package app wires the pieces of the headless pipeline host together: an
// isolated logger, the scripting engine, the dispatcher that owns result
// delivery, the transform registry, and the data sources built from pipeline
// files or a restored session.
package app
