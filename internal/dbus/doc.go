// Package dbus implements the org.freedesktop.Notifications D-Bus interface.
// The Server lets any desktop application raise toasts through Notify and
// CloseNotification; the Client is what the toasty CLI uses to reach it.
package dbus
