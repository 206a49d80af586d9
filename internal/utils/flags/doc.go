// Package flags provides helpers for registering validated Cobra flags.
package flags
