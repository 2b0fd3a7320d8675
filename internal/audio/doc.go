// Package audio plays toast sounds. It uses the beep library to play WAV,
// OGG and MP3 files with volume control and per-variant sound configuration.
package audio
