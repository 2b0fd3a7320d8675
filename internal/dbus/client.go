package dbus

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toasty/internal/model"
)

// SendRequest is a notification to send to whichever server owns the bus name.
type SendRequest struct {
	AppName    string
	ReplacesID uint32
	Icon       string
	Summary    string
	Body       string
	Actions    []Action
	Urgency    int
	Category   string
	Timeout    time.Duration // 0 = server default
}

// SetVariant picks urgency and category so that Notification.Variant on
// the receiving side yields v.
func (r *SendRequest) SetVariant(v model.Variant) {
	r.Urgency = UrgencyNormal
	r.Category = ""
	switch v {
	case model.VariantSuccess:
		r.Category = "transfer.complete"
	case model.VariantWarning:
		r.Category = "device.warning"
	case model.VariantDanger:
		r.Urgency = UrgencyCritical
	}
}

// Client calls a running notification server over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(DBusBusName, DBusPath),
	}, nil
}

// Notify sends a notification and returns the server-assigned id.
func (c *Client) Notify(ctx context.Context, req SendRequest) (uint32, error) {
	actions := make([]string, 0, len(req.Actions)*2)
	for _, a := range req.Actions {
		actions = append(actions, a.Key, a.Label)
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(req.Urgency)),
	}
	if req.Category != "" {
		hints["category"] = dbus.MakeVariant(req.Category)
	}

	timeout := int32(-1)
	if req.Timeout > 0 {
		timeout = int32(req.Timeout.Milliseconds())
	}

	var id uint32
	call := c.obj.CallWithContext(ctx, DBusInterface+".Notify", 0,
		req.AppName, req.ReplacesID, req.Icon, req.Summary, req.Body, actions, hints, timeout)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify failed: %w", err)
	}
	return id, nil
}

// Close asks the server to close a notification.
func (c *Client) Close(ctx context.Context, id uint32) error {
	call := c.obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id)
	if call.Err != nil {
		return fmt.Errorf("close failed: %w", call.Err)
	}
	return nil
}

// ServerInformation returns the running server's identity.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	call := c.obj.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0)
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return ServerInfo{}, fmt.Errorf("get server information failed: %w", err)
	}
	return info, nil
}
