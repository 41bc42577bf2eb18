// Package audio groups audio format helpers.
//
// The pcm sub-package carries the raw LPCM byte math used when sizing
// and pacing recognition uploads.
package audio
