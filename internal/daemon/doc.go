// Package daemon holds the pieces toastyd wires around the toast registry:
// the D-Bus bridge, internal notifications about the daemon itself, and
// config hot-reload.
package daemon
