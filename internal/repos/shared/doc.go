// Package shared declares the collaborator interfaces used across the
// repository packages so that services can be exercised with fakes.
package shared
